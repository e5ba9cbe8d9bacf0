package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

const (
	cbAddAudio  = "add_audio"
	cbAddImage  = "add_image"
	cbAddText   = "add_text"
	cbAddTitle  = "add_title"
	cbGetQR     = "get_qr"
	cbViewPage  = "view_page"
	cbDeleteAll = "delete_all"
)

func mainKeyboard() *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎵 Add audio", cbAddAudio),
			tgbotapi.NewInlineKeyboardButtonData("📸 Add photo", cbAddImage),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Add text", cbAddText),
			tgbotapi.NewInlineKeyboardButtonData("🏷 Set title", cbAddTitle),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔳 Get QR code", cbGetQR),
			tgbotapi.NewInlineKeyboardButtonData("👁 View page", cbViewPage),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Clear everything", cbDeleteAll),
		),
	)
	return &kb
}
