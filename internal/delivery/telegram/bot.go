package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/qrpage/internal/domain"
	"github.com/Vovarama1992/qrpage/internal/models"
	"github.com/Vovarama1992/qrpage/internal/observability"
	"github.com/Vovarama1992/qrpage/internal/ports"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Bot struct {
	api      API
	pages    ports.PageService
	sessions *domain.SessionStore
	access   ports.AccessPolicy
	qr       ports.QREncoder
	caption  string
	pageURL  func(pageID string) string

	metrics *observability.Metrics
	log     *logger.ZapLogger

	// pending updates per owner; a key is present while its drain
	// goroutine runs
	qmu    sync.Mutex
	queues map[int64][]tgbotapi.Update
}

func NewBot(
	api API,
	pages ports.PageService,
	sessions *domain.SessionStore,
	access ports.AccessPolicy,
	qr ports.QREncoder,
	caption string,
	pageURL func(pageID string) string,
	metrics *observability.Metrics,
	log *logger.ZapLogger,
) *Bot {
	return &Bot{
		api:      api,
		pages:    pages,
		sessions: sessions,
		access:   access,
		qr:       qr,
		caption:  caption,
		pageURL:  pageURL,
		metrics:  metrics,
		log:      log,
		queues:   make(map[int64][]tgbotapi.Update),
	}
}

// Run long-polls Telegram until ctx is done. Updates queued while the
// bot was offline are dropped. Different owners are handled
// concurrently, one owner's updates strictly in arrival order. Run
// returns after in-flight handlers finish.
func (b *Bot) Run(ctx context.Context) error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "bot polling started",
	})

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, upd, &wg)
		}
	}
}

// dispatch appends upd to its owner's queue and starts a drain
// goroutine unless one is already running for that owner.
func (b *Bot) dispatch(ctx context.Context, upd tgbotapi.Update, wg *sync.WaitGroup) {
	owner := updateOwner(upd)

	b.qmu.Lock()
	q, running := b.queues[owner]
	b.queues[owner] = append(q, upd)
	b.qmu.Unlock()

	if running {
		return
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.drain(ctx, owner)
	}()
}

func (b *Bot) drain(ctx context.Context, owner int64) {
	for {
		b.qmu.Lock()
		q := b.queues[owner]
		if len(q) == 0 {
			delete(b.queues, owner)
			b.qmu.Unlock()
			return
		}
		upd := q[0]
		b.queues[owner] = q[1:]
		b.qmu.Unlock()

		b.Handle(ctx, upd)
	}
}

func updateOwner(upd tgbotapi.Update) int64 {
	switch {
	case upd.Message != nil && upd.Message.From != nil:
		return upd.Message.From.ID
	case upd.CallbackQuery != nil && upd.CallbackQuery.From != nil:
		return upd.CallbackQuery.From.ID
	}
	return 0
}

// Handle dispatches one update. Users outside the allow-list get no
// reply.
func (b *Bot) Handle(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.Message != nil && upd.Message.From != nil && upd.Message.Chat != nil:
		kind := "message"
		if upd.Message.IsCommand() {
			kind = "command"
		}
		b.metrics.ObserveUpdate(kind)
		if !b.allowed(upd.Message.From.ID) {
			return
		}
		b.onMessage(ctx, upd.Message)

	case upd.CallbackQuery != nil && upd.CallbackQuery.From != nil:
		b.metrics.ObserveUpdate("callback")
		if !b.allowed(upd.CallbackQuery.From.ID) {
			return
		}
		b.onCallback(ctx, upd.CallbackQuery)
	}
}

func (b *Bot) allowed(userID int64) bool {
	if b.access.Allowed(userID) {
		return true
	}
	b.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "update from unknown user ignored",
		Fields:  map[string]any{"userID": userID},
	})
	return false
}

func (b *Bot) send(c tgbotapi.Chattable) (tgbotapi.Message, bool) {
	m, err := b.api.Send(c)
	if err != nil {
		b.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "telegram send failed",
			Error:   err,
		})
		return m, false
	}
	return m, true
}

func (b *Bot) reply(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	b.send(msg)
}

// fail logs err and tells the user a short, fixed message for its
// class.
func (b *Bot) fail(chatID, userID int64, op string, err error) {
	b.log.Log(logger.LogEntry{
		Level:   "error",
		Message: op + " failed",
		Fields:  map[string]any{"userID": userID},
		Error:   err,
	})
	b.reply(chatID, userMessage(err), nil)
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrEmptyInput):
		return msgEmptyInput
	case errors.Is(err, models.ErrUpstreamFetch):
		return msgDownloadFailed
	case errors.Is(err, models.ErrEncoding):
		return msgEncodingFailed
	case errors.Is(err, models.ErrStorageUnavailable):
		return msgStorageUnavailable
	}
	return msgGenericFailure
}
