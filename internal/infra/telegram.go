package infra

import (
	"context"
	"fmt"

	"github.com/Vovarama1992/qrpage/internal/ports"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func NewTelegramBot(token string, debug bool) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	bot.Debug = debug
	return bot, nil
}

type TelegramFileResolver struct {
	bot *tgbotapi.BotAPI
}

func NewTelegramFileResolver(bot *tgbotapi.BotAPI) ports.FileResolver {
	return &TelegramFileResolver{bot: bot}
}

func (r *TelegramFileResolver) ResolveFileURL(ctx context.Context, fileID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	url, err := r.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("telegram getFile: %w", err)
	}
	return url, nil
}
