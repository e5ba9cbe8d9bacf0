package telegram

import (
	"fmt"
	"html"

	"github.com/Vovarama1992/qrpage/internal/models"
)

const (
	msgWelcome = "👋 <b>Hello!</b>\n\n" +
		"🔳 I am the <b>QR Code Generator</b> bot.\n\n" +
		"📱 Send me <b>audio, a photo or text</b> and I will build\n" +
		"a landing page for it and give you its QR code.\n\n" +
		"Whoever scans the code sees your page and hears your voice! 🎧"

	msgHelp = "📖 <b>Help</b>\n\n" +
		"🎵 <b>Add audio</b> — send a voice message or an audio file\n" +
		"📸 <b>Add photo</b> — send a picture\n" +
		"📝 <b>Add text</b> — write a message\n" +
		"🏷 <b>Set title</b> — name your page\n" +
		"🔳 <b>QR code</b> — get the QR code of your page\n" +
		"👁 <b>View</b> — open your page in the browser\n" +
		"🗑 <b>Clear</b> — remove everything\n\n" +
		"─────────────────────\n" +
		"/start — main menu\n" +
		"/help — this help\n" +
		"/myqr — your QR code"

	msgChooseAction = "⬇️ Choose an action:"
	msgSeparator    = "─────────────────────"

	msgAskAudio = "🎵 <b>Send the audio!</b>\n\nA voice message or an audio file.\nCancel: /start"
	msgAskImage = "📸 <b>Send the photo!</b>\n\nSend it as a photo, not as a file.\nCancel: /start"
	msgAskText  = "📝 <b>Write the text!</b>\n\nIt will be shown on your page.\nCancel: /start"
	msgAskTitle = "🏷 <b>Write the title!</b>\n\nIt is shown at the top of your page.\nCancel: /start"

	msgAudioSaved = "✅ <b>Audio saved!</b>"
	msgImageSaved = "✅ <b>Photo saved!</b>"
	msgTextSaved  = "✅ <b>Text saved!</b>"
	msgTitleSaved = "✅ <b>Title saved!</b>"
	msgBackToMenu = "Main menu: /start"

	msgPageEmpty = "⚠️ <b>Your page is empty!</b>\n\nAdd audio, a photo or text first."
	msgCleared   = "🗑 <b>Your page was cleared!</b>\n\nPress /start to add new content."
	msgWorking   = "⏳ Generating the QR code..."

	msgWhatToDo = "💡 <b>What would you like to do?</b>\n\n" +
		"Press /start for the main menu.\n" +
		"Or send any link and I will make a QR code for it!"
	msgUnknownCommand = "🤷 Unknown command. See /help."

	msgEmptyInput         = "⚠️ The message is empty. Please send some text."
	msgDownloadFailed     = "❌ Could not download the file from Telegram. Please send it again."
	msgEncodingFailed     = "❌ Could not make a QR code from this. The link may be too long."
	msgStorageUnavailable = "❌ Storage is temporarily unavailable. Please try again."
	msgGenericFailure     = "❌ Something went wrong. Please try again."
)

func expectMessage(state models.SessionState) string {
	switch state {
	case models.StateAwaitingAudio:
		return "🎵 I am waiting for an <b>audio</b> or <b>voice</b> message.\nCancel: /start"
	case models.StateAwaitingImage:
		return "📸 I am waiting for a <b>photo</b>.\nCancel: /start"
	case models.StateAwaitingText:
		return "📝 I am waiting for <b>text</b>.\nCancel: /start"
	case models.StateAwaitingTitle:
		return "🏷 I am waiting for the <b>title</b> text.\nCancel: /start"
	}
	return msgWhatToDo
}

func mark(set *string) string {
	if set != nil && *set != "" {
		return "✅"
	}
	return "❌"
}

func pageStatus(p *models.Page) string {
	return fmt.Sprintf(
		"📋 <b>Your page:</b>\n\n🏷 %s\n🎵 Audio: %s\n📸 Photo: %s\n📝 Text: %s",
		html.EscapeString(p.DisplayTitle()),
		mark(p.Audio),
		mark(p.Image),
		mark(p.Text),
	)
}

func welcomeText(p *models.Page) string {
	return msgWelcome + "\n\n" + msgSeparator + "\n\n" + pageStatus(p) + "\n\n" + msgSeparator + "\n" + msgChooseAction
}

func savedText(headline string, p *models.Page) string {
	return headline + "\n\n" + pageStatus(p) + "\n\n" + msgBackToMenu
}

func pageQRCaption(url string, p *models.Page) string {
	caption := "✅ <b>Your QR code is ready!</b>\n\n" +
		"🔗 <b>Page:</b>\n<code>" + html.EscapeString(url) + "</code>\n\n"
	if p != nil {
		caption += pageStatus(p) + "\n\n"
	}
	return caption + "📷 Scan it to open your page!"
}

func urlQRCaption(url string) string {
	return "✅ <b>QR code ready!</b>\n\n🔗 <code>" + html.EscapeString(url) + "</code>\n\n📷 Scan it to open the link!"
}

func viewPageText(url string) string {
	u := html.EscapeString(url)
	return "👁 <b>Your page:</b>\n\n🔗 <a href=\"" + u + "\">" + u + "</a>\n\nTap the link or copy it into a browser!"
}
