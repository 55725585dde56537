package coinalert

import (
	"context"

	"github.com/raykavin/coinalert/pkg/notification"
)

// initializeNotifications sets up the Telegram transport when it is enabled
func initializeNotifications(ctx context.Context, bot *Bot) error {
	if !bot.settings.Telegram.Enabled {
		return nil
	}

	if bot.settings.Telegram.Token == "" {
		return ErrMissingToken
	}

	telegram, err := notification.NewTelegram(ctx, bot.settings.Telegram, bot.handler, bot.log)
	if err != nil {
		return err
	}

	bot.telegram = telegram
	// Telegram also delivers alerts unless another notifier was injected
	if bot.notifier == nil {
		WithNotifier(telegram)(bot)
	}
	return nil
}
