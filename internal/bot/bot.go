// Package bot runs the intake wizard over Telegram, one session per chat.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/terraincognita07/bloomly/internal/i18n"
	"github.com/terraincognita07/bloomly/internal/services"
	"github.com/terraincognita07/bloomly/internal/session"
)

const updateTimeoutSeconds = 60

// Sender is the part of the Telegram client the bot needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type chat struct {
	sessionID    string
	language     string
	emailPending bool
}

type Bot struct {
	api      Sender
	wizard   *services.WizardController
	sessions *session.Store
	i18n     *i18n.Manager

	mu    sync.Mutex
	chats map[int64]*chat
}

type Options struct {
	Wizard   *services.WizardController
	Sessions *session.Store
	I18n     *i18n.Manager
}

func New(api Sender, options Options) (*Bot, error) {
	if api == nil {
		return nil, errors.New("telegram client is required")
	}
	if options.Wizard == nil || options.Sessions == nil || options.I18n == nil {
		return nil, errors.New("wizard, sessions and i18n are required")
	}
	return &Bot{
		api:      api,
		wizard:   options.Wizard,
		sessions: options.Sessions,
		i18n:     options.I18n,
		chats:    make(map[int64]*chat),
	}, nil
}

// Connect authorizes token against the Telegram API.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	log.Printf("telegram bot authorized as @%s", api.Self.UserName)
	return api, nil
}

// Serve long-polls api until ctx is cancelled.
func Serve(ctx context.Context, api *tgbotapi.BotAPI, bot *Bot) {
	config := tgbotapi.NewUpdate(0)
	config.Timeout = updateTimeoutSeconds
	updates := api.GetUpdatesChan(config)

	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()
	bot.Run(ctx, updates)
}

// Run handles updates one at a time until the channel closes or ctx ends.
func (bot *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			bot.HandleUpdate(ctx, update)
		}
	}
}

func (bot *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		query := update.CallbackQuery
		if _, err := bot.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			log.Printf("telegram callback ack failed: %v", err)
		}
		if query.Message == nil {
			return
		}
		language := ""
		if query.From != nil {
			language = query.From.LanguageCode
		}
		bot.deliver(query.Message.Chat.ID, bot.handleCallback(ctx, query.Message.Chat.ID, language, query.Data))
	case update.Message != nil:
		message := update.Message
		language := ""
		if message.From != nil {
			language = message.From.LanguageCode
		}
		if message.IsCommand() {
			bot.deliver(message.Chat.ID, bot.handleCommand(message.Chat.ID, language, message.Command()))
			return
		}
		bot.deliver(message.Chat.ID, bot.handleText(ctx, message.Chat.ID, language, message.Text))
	}
}

func (bot *Bot) deliver(chatID int64, replies []reply) {
	for _, item := range replies {
		message := tgbotapi.NewMessage(chatID, item.text)
		if item.keyboard != nil {
			message.ReplyMarkup = *item.keyboard
		}
		if _, err := bot.api.Send(message); err != nil {
			log.Printf("telegram send to chat %d failed: %v", chatID, err)
		}
	}
}
