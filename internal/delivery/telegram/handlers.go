package telegram

import (
	"context"
	"regexp"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/qrpage/internal/models"
	"github.com/Vovarama1992/qrpage/internal/ports"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`)

func (b *Bot) onMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID, userID := msg.Chat.ID, msg.From.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.cmdStart(ctx, chatID, userID)
		case "help":
			b.reply(chatID, msgHelp, nil)
		case "myqr":
			b.cmdMyQR(ctx, chatID, userID)
		default:
			b.reply(chatID, msgUnknownCommand, nil)
		}
		return
	}

	// Only the kind of message the owner was asked for may touch the
	// page; anything else gets a reminder.
	state := b.sessions.Get(userID)
	switch state {
	case models.StateAwaitingAudio:
		switch {
		case msg.Audio != nil:
			b.receiveAudio(ctx, chatID, userID, msg.Audio.FileID, ports.AudioKindFile)
		case msg.Voice != nil:
			b.receiveAudio(ctx, chatID, userID, msg.Voice.FileID, ports.AudioKindVoice)
		default:
			b.reply(chatID, expectMessage(state), nil)
		}

	case models.StateAwaitingImage:
		if len(msg.Photo) == 0 {
			b.reply(chatID, expectMessage(state), nil)
			return
		}
		// sizes are ascending; the last one is the original
		b.receiveImage(ctx, chatID, userID, msg.Photo[len(msg.Photo)-1].FileID)

	case models.StateAwaitingText, models.StateAwaitingTitle:
		if msg.Text == "" {
			b.reply(chatID, expectMessage(state), nil)
			return
		}
		b.receiveText(ctx, chatID, userID, state, msg.Text)

	default:
		if msg.Text == "" {
			b.reply(chatID, msgWhatToDo, nil)
			return
		}
		b.qrForLinks(chatID, userID, msg.Text)
	}
}

func (b *Bot) cmdStart(ctx context.Context, chatID, userID int64) {
	b.sessions.Reset(userID)

	page, err := b.pages.FindOrCreate(ctx, userID)
	if err != nil {
		b.fail(chatID, userID, "start", err)
		return
	}
	b.reply(chatID, welcomeText(page), mainKeyboard())
}

func (b *Bot) cmdMyQR(ctx context.Context, chatID, userID int64) {
	page, err := b.pages.FindOrCreate(ctx, userID)
	if err != nil {
		b.fail(chatID, userID, "myqr", err)
		return
	}
	url := b.pageURL(page.ID)
	b.sendQR(chatID, userID, url, pageQRCaption(url, nil), "page")
}

func (b *Bot) receiveAudio(ctx context.Context, chatID, userID int64, fileID string, kind ports.AudioKind) {
	page, err := b.pages.AttachAudio(ctx, userID, fileID, kind)
	if err != nil {
		b.fail(chatID, userID, "attach audio", err)
		return
	}
	b.sessions.Complete(userID, models.StateAwaitingAudio)
	b.reply(chatID, savedText(msgAudioSaved, page), mainKeyboard())
}

func (b *Bot) receiveImage(ctx context.Context, chatID, userID int64, fileID string) {
	page, err := b.pages.AttachImage(ctx, userID, fileID)
	if err != nil {
		b.fail(chatID, userID, "attach image", err)
		return
	}
	b.sessions.Complete(userID, models.StateAwaitingImage)
	b.reply(chatID, savedText(msgImageSaved, page), mainKeyboard())
}

func (b *Bot) receiveText(ctx context.Context, chatID, userID int64, state models.SessionState, text string) {
	var (
		page     *models.Page
		err      error
		headline = msgTextSaved
	)
	if state == models.StateAwaitingTitle {
		page, err = b.pages.SetTitle(ctx, userID, text)
		headline = msgTitleSaved
	} else {
		page, err = b.pages.SetText(ctx, userID, text)
	}
	if err != nil {
		b.fail(chatID, userID, "set "+string(state), err)
		return
	}
	b.sessions.Complete(userID, state)
	b.reply(chatID, savedText(headline, page), mainKeyboard())
}

// qrForLinks answers every http(s) link in text with its own QR code.
func (b *Bot) qrForLinks(chatID, userID int64, text string) {
	urls := urlPattern.FindAllString(strings.TrimSpace(text), -1)
	if len(urls) == 0 {
		b.reply(chatID, msgWhatToDo, nil)
		return
	}
	for _, url := range urls {
		b.sendQR(chatID, userID, url, urlQRCaption(url), "url")
	}
}

// sendQR shows a progress note while encoding and removes it once the
// photo (or the failure message) is out.
func (b *Bot) sendQR(chatID, userID int64, data, caption, source string) {
	working, ok := b.send(tgbotapi.NewMessage(chatID, msgWorking))
	defer func() {
		if ok {
			_, _ = b.api.Request(tgbotapi.NewDeleteMessage(chatID, working.MessageID))
		}
	}()

	png, err := b.qr.Encode(data, b.caption)
	if err != nil {
		b.fail(chatID, userID, "qr encode", err)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "qrcode.png", Bytes: png})
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	if _, sent := b.send(photo); sent {
		b.metrics.ObserveQR(source)
	}
}

func (b *Bot) onCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			b.log.Log(logger.LogEntry{
				Level:   "warn",
				Message: "answer callback failed",
				Error:   err,
			})
		}
	}()

	userID := cb.From.ID
	chatID := userID
	if cb.Message != nil && cb.Message.Chat != nil {
		chatID = cb.Message.Chat.ID
	}

	switch cb.Data {
	case cbAddAudio:
		b.sessions.Set(userID, models.StateAwaitingAudio)
		b.reply(chatID, msgAskAudio, nil)
	case cbAddImage:
		b.sessions.Set(userID, models.StateAwaitingImage)
		b.reply(chatID, msgAskImage, nil)
	case cbAddText:
		b.sessions.Set(userID, models.StateAwaitingText)
		b.reply(chatID, msgAskText, nil)
	case cbAddTitle:
		b.sessions.Set(userID, models.StateAwaitingTitle)
		b.reply(chatID, msgAskTitle, nil)

	case cbGetQR:
		page, err := b.pages.FindOrCreate(ctx, userID)
		if err != nil {
			b.fail(chatID, userID, "get qr", err)
			return
		}
		if !page.HasContent() {
			b.reply(chatID, msgPageEmpty, nil)
			return
		}
		url := b.pageURL(page.ID)
		b.sendQR(chatID, userID, url, pageQRCaption(url, page), "page")

	case cbViewPage:
		page, err := b.pages.FindOrCreate(ctx, userID)
		if err != nil {
			b.fail(chatID, userID, "view page", err)
			return
		}
		b.reply(chatID, viewPageText(b.pageURL(page.ID)), nil)

	case cbDeleteAll:
		if _, err := b.pages.Clear(ctx, userID); err != nil {
			b.fail(chatID, userID, "clear page", err)
			return
		}
		b.sessions.Reset(userID)
		b.reply(chatID, msgCleared, nil)

	default:
		b.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "unknown callback",
			Fields:  map[string]any{"data": cb.Data, "userID": userID},
		})
	}
}
