// Package notification provides the Telegram chat transport
package notification

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	tb "gopkg.in/tucnak/telebot.v2"

	"github.com/raykavin/coinalert/pkg/command"
	"github.com/raykavin/coinalert/pkg/core"
	"github.com/raykavin/coinalert/pkg/logger"
)

// Telegram implements the core.NotifierWithStart interface
type Telegram struct {
	ctx      context.Context
	settings core.TelegramSettings
	handler  *command.Handler
	client   *tb.Bot
	log      logger.Logger
}

var _ core.NotifierWithStart = (*Telegram)(nil)

type config struct {
	apiURL  string
	offline bool
}

// Option is a function that configures the Telegram client
type Option func(*config)

// WithAPIURL points the bot at a custom Bot API server
func WithAPIURL(url string) Option {
	return func(c *config) {
		c.apiURL = url
	}
}

// WithOffline skips the getMe call made when the bot is created
func WithOffline() Option {
	return func(c *config) {
		c.offline = true
	}
}

// NewTelegram creates the bot and registers every command handler
func NewTelegram(ctx context.Context, settings core.TelegramSettings, handler *command.Handler,
	log logger.Logger, options ...Option) (*Telegram, error) {
	cfg := &config{}
	for _, option := range options {
		option(cfg)
	}

	timeout := settings.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	poller := &tb.LongPoller{Timeout: timeout}

	bot := &Telegram{
		ctx:      ctx,
		settings: settings,
		handler:  handler,
		log:      log,
	}

	client, err := tb.NewBot(tb.Settings{
		URL:     cfg.apiURL,
		Token:   settings.Token,
		Poller:  bot.createAuthMiddleware(poller),
		Offline: cfg.offline,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.client = client

	bot.registerHandlers()

	return bot, nil
}

// createAuthMiddleware drops updates from users outside the allow-list, when one is configured
func (t *Telegram) createAuthMiddleware(poller tb.Poller) tb.Poller {
	if len(t.settings.Users) == 0 {
		return poller
	}

	return tb.NewMiddlewarePoller(poller, func(u *tb.Update) bool {
		var sender *tb.User
		switch {
		case u.Message != nil:
			sender = u.Message.Sender
		case u.Callback != nil:
			sender = u.Callback.Sender
		}

		if sender == nil {
			return false
		}
		if slices.Contains(t.settings.Users, sender.ID) {
			return true
		}

		t.log.WithField("user", sender.ID).Warn("unauthorized user")
		return false
	})
}

// setupCommands publishes the command menu
func (t *Telegram) setupCommands() error {
	commands := make([]tb.Command, 0, len(command.Descriptions))
	for _, c := range command.Descriptions {
		commands = append(commands, tb.Command{Text: "/" + c.Name, Description: c.Description})
	}
	return t.client.SetCommands(commands)
}

// registerHandlers registers all command handlers
func (t *Telegram) registerHandlers() {
	for _, c := range command.Descriptions {
		t.client.Handle("/"+c.Name, t.CommandHandle(c.Name))
	}
	t.client.Handle(tb.OnCallback, t.CallbackHandle)
}

// Start publishes the command menu and begins long polling in the background
func (t *Telegram) Start() {
	if err := t.setupCommands(); err != nil {
		t.log.WithError(err).Warn("failed to set telegram commands")
	}
	go t.client.Start()
	t.log.Info("telegram bot started")
}

// Stop ends long polling
func (t *Telegram) Stop() {
	t.client.Stop()
	t.log.Info("telegram bot stopped")
}

// Deliver sends an alert notification to a user's private chat
func (t *Telegram) Deliver(ctx context.Context, to core.UserID, text string) error {
	if err := ctx.Err(); err != nil {
		return &core.DeliveryError{To: to, Err: err}
	}

	_, err := t.client.Send(tb.ChatID(to), text, &tb.SendOptions{ParseMode: tb.ModeMarkdown})
	if err != nil {
		return &core.DeliveryError{To: to, Err: err}
	}
	return nil
}

// CommandHandle returns the handler serving the named command
func (t *Telegram) CommandHandle(name string) func(m *tb.Message) {
	return func(m *tb.Message) {
		if m.Sender == nil {
			return
		}

		user := core.UserID(m.Sender.ID)
		t.log.WithFields(map[string]any{"user": user, "command": name}).Debug("command received")

		replies := t.handler.Dispatch(t.ctx, user, name, strings.Fields(m.Payload))
		for _, reply := range replies {
			t.sendReply(m.Chat, reply)
		}
	}
}

// CallbackHandle serves inline keyboard presses
func (t *Telegram) CallbackHandle(c *tb.Callback) {
	if err := t.client.Respond(c); err != nil {
		t.log.WithError(err).Warn("failed to answer callback")
	}
	if c.Sender == nil {
		return
	}

	reply, ok := t.handler.SelectLanguage(core.UserID(c.Sender.ID), c.Data)
	if !ok || c.Message == nil {
		return
	}

	if _, err := t.client.Edit(c.Message, reply.Text); err != nil {
		t.log.WithError(err).WithField("user", c.Sender.ID).Error("failed to edit message")
	}
}

func (t *Telegram) sendReply(to tb.Recipient, reply command.Reply) {
	options := &tb.SendOptions{}
	if reply.Markdown {
		options.ParseMode = tb.ModeMarkdown
	}
	if len(reply.Keyboard) > 0 {
		row := make([]tb.InlineButton, 0, len(reply.Keyboard))
		for _, button := range reply.Keyboard {
			row = append(row, tb.InlineButton{Text: button.Text, Data: button.Data})
		}
		options.ReplyMarkup = &tb.ReplyMarkup{InlineKeyboard: [][]tb.InlineButton{row}}
	}

	if _, err := t.client.Send(to, reply.Text, options); err != nil {
		t.log.WithError(err).WithField("chat", to.Recipient()).Error("failed to send reply")
	}
}
