package bot

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/terraincognita07/bloomly/internal/models"
	"github.com/terraincognita07/bloomly/internal/services"
	"github.com/terraincognita07/bloomly/internal/session"
)

const (
	callbackContinue = "wizard:continue"
	callbackFinish   = "wizard:finish"
	callbackRefresh  = "results:refresh"
	loginPrefix      = "login:"
	moodPrefix       = "mood:"
)

type reply struct {
	text     string
	keyboard *tgbotapi.InlineKeyboardMarkup
}

func textReply(text string) reply {
	return reply{text: text}
}

func (bot *Bot) handleCommand(chatID int64, languageCode string, command string) []reply {
	current := bot.chatFor(chatID, languageCode)

	switch command {
	case "start":
		if current.sessionID != "" {
			bot.sessions.Delete(current.sessionID)
		}
		current.sessionID = bot.sessions.Create(bot.wizard.NewState())
		current.emailPending = false
		bot.saveChat(chatID, current)
		return []reply{bot.welcome(current.language)}
	case "stop":
		if current.sessionID != "" {
			bot.sessions.Delete(current.sessionID)
		}
		bot.forgetChat(chatID)
		return []reply{textReply(bot.i18n.Translate(current.language, "bot.restart"))}
	default:
		return []reply{textReply(bot.i18n.Translate(current.language, "bot.unknown_command"))}
	}
}

func (bot *Bot) handleCallback(ctx context.Context, chatID int64, languageCode string, data string) []reply {
	current := bot.chatFor(chatID, languageCode)
	state, ok := bot.stateFor(current)
	if !ok {
		bot.forgetChat(chatID)
		return []reply{textReply(bot.i18n.Translate(current.language, "bot.restart"))}
	}

	switch {
	case data == callbackContinue:
		next, err := bot.wizard.Continue(state)
		if err != nil {
			return bot.failure(current.language, err)
		}
		return bot.advance(chatID, current, next, bot.loginPrompt(current.language))
	case strings.HasPrefix(data, loginPrefix):
		provider := strings.TrimPrefix(data, loginPrefix)
		if state.Step == models.StepLogin && strings.EqualFold(provider, models.ProviderEmail) {
			current.emailPending = true
			bot.saveChat(chatID, current)
			return []reply{textReply(bot.i18n.Translate(current.language, "bot.email_prompt"))}
		}
		next, err := bot.wizard.Login(state, services.LoginInput{Provider: provider})
		if err != nil {
			return bot.failure(current.language, err)
		}
		return bot.advance(chatID, current, next, textReply(bot.i18n.Translate(current.language, "bot.cycle_prompt")))
	case strings.HasPrefix(data, moodPrefix):
		moods := bot.wizard.Moods()
		index, err := strconv.Atoi(strings.TrimPrefix(data, moodPrefix))
		if err != nil || index < 0 || index >= len(moods) {
			return bot.failure(current.language, services.ErrUnknownMood)
		}
		next, err := bot.wizard.SelectMood(state, moods[index])
		if err != nil {
			return bot.failure(current.language, err)
		}
		return bot.finish(ctx, chatID, current, next)
	case data == callbackFinish:
		return bot.finish(ctx, chatID, current, state)
	case data == callbackRefresh:
		results, err := bot.wizard.Results(ctx, state)
		if err != nil {
			return bot.failure(current.language, err)
		}
		return []reply{bot.resultsReply(current.language, results)}
	default:
		return []reply{textReply(bot.i18n.Translate(current.language, "bot.unknown_command"))}
	}
}

// handleText interprets typed input according to the step the chat is on.
func (bot *Bot) handleText(ctx context.Context, chatID int64, languageCode string, text string) []reply {
	current := bot.chatFor(chatID, languageCode)
	state, ok := bot.stateFor(current)
	if !ok {
		bot.forgetChat(chatID)
		return []reply{textReply(bot.i18n.Translate(current.language, "bot.restart"))}
	}

	switch state.Step {
	case models.StepSplash:
		return []reply{bot.welcome(current.language)}
	case models.StepLogin:
		if !current.emailPending {
			return []reply{bot.loginPrompt(current.language)}
		}
		next, err := bot.wizard.Login(state, services.LoginInput{Provider: models.ProviderEmail, Email: text})
		if err != nil {
			return bot.failure(current.language, err)
		}
		current.emailPending = false
		return bot.advance(chatID, current, next, textReply(bot.i18n.Translate(current.language, "bot.cycle_prompt")))
	case models.StepCycleInput:
		next, report, err := bot.wizard.SubmitCycle(state, services.CycleInput{Text: text})
		replies := make([]reply, 0, 3)
		if len(report.Rejected) > 0 {
			replies = append(replies, textReply(bot.i18n.Translatef(current.language, "bot.cycle_rejected", strings.Join(report.Rejected, ", "))))
		}
		if err != nil {
			return append(replies, bot.failure(current.language, err)...)
		}
		return append(replies, bot.advance(chatID, current, next,
			textReply(bot.i18n.Translate(current.language, "bot.symptoms_prompt")),
			bot.moodPrompt(current.language),
		)...)
	case models.StepPMSMood:
		next, err := bot.wizard.SelectSymptoms(state, services.SplitSymptomText(text))
		if err != nil {
			return bot.failure(current.language, err)
		}
		saved := strings.Join(next.SymptomSelection, ", ")
		if saved == "" {
			saved = models.SymptomNone
		}
		return bot.advance(chatID, current, next,
			textReply(bot.i18n.Translatef(current.language, "bot.symptoms_saved", saved)),
			bot.moodPrompt(current.language),
		)
	default:
		return []reply{textReply(bot.i18n.Translate(current.language, "bot.restart"))}
	}
}

func (bot *Bot) finish(ctx context.Context, chatID int64, current chat, state models.WizardState) []reply {
	next, results, err := bot.wizard.Finish(ctx, state)
	if err != nil {
		return bot.failure(current.language, err)
	}
	return bot.advance(chatID, current, next, bot.resultsReply(current.language, results))
}

// advance stores next for the chat and returns replies, or asks the user to
// restart when the session has expired in the meantime.
func (bot *Bot) advance(chatID int64, current chat, next models.WizardState, replies ...reply) []reply {
	if err := bot.sessions.Put(current.sessionID, next); err != nil {
		bot.forgetChat(chatID)
		return []reply{textReply(bot.i18n.Translate(current.language, "bot.restart"))}
	}
	bot.saveChat(chatID, current)
	return replies
}

func (bot *Bot) failure(language string, err error) []reply {
	var validation *services.ValidationFailure
	if errors.As(err, &validation) || errors.Is(err, services.ErrInvalidTransition) || errors.Is(err, services.ErrUnknownMood) {
		return []reply{textReply(bot.i18n.Translate(language, services.MessageKey(err)))}
	}
	log.Printf("telegram wizard action failed: %v", err)
	return []reply{textReply(bot.i18n.Translate(language, "error.internal"))}
}

// chatFor returns the stored record for chatID, or a fresh one that is kept
// only once saveChat is called.
func (bot *Bot) chatFor(chatID int64, languageCode string) chat {
	bot.mu.Lock()
	defer bot.mu.Unlock()

	current := chat{language: bot.i18n.DefaultLanguage()}
	if stored, ok := bot.chats[chatID]; ok {
		current = *stored
	}
	if strings.TrimSpace(languageCode) != "" {
		current.language = bot.i18n.NormalizeLanguage(languageCode)
	}
	return current
}

func (bot *Bot) saveChat(chatID int64, current chat) {
	bot.mu.Lock()
	defer bot.mu.Unlock()
	bot.chats[chatID] = &current
}

// forgetChat drops the record of a chat whose session ended or expired.
func (bot *Bot) forgetChat(chatID int64) {
	bot.mu.Lock()
	defer bot.mu.Unlock()
	delete(bot.chats, chatID)
}

func (bot *Bot) stateFor(current chat) (models.WizardState, bool) {
	if current.sessionID == "" {
		return models.WizardState{}, false
	}
	state, err := bot.sessions.Get(current.sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return models.WizardState{}, false
	}
	return state, err == nil
}
