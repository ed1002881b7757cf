package bot

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/terraincognita07/bloomly/internal/models"
	"github.com/terraincognita07/bloomly/internal/services"
)

func (bot *Bot) welcome(language string) reply {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(bot.i18n.Translate(language, "button.continue"), callbackContinue),
		),
	)
	return reply{text: bot.i18n.Translate(language, "bot.welcome"), keyboard: &keyboard}
}

func (bot *Bot) loginPrompt(language string) reply {
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(models.LoginProviders()))
	for _, provider := range models.LoginProviders() {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(provider, loginPrefix+provider))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))
	return reply{text: bot.i18n.Translate(language, "bot.login_prompt"), keyboard: &keyboard}
}

// moodPrompt offers one button per mood plus a finish button that keeps the
// current mood.
func (bot *Bot) moodPrompt(language string) reply {
	moods := bot.wizard.Moods()
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(moods)+1)
	for index, mood := range moods {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(mood, moodPrefix+strconv.Itoa(index)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(bot.i18n.Translate(language, "bot.finish"), callbackFinish),
	))
	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return reply{text: bot.i18n.Translate(language, "bot.mood_prompt"), keyboard: &keyboard}
}

func (bot *Bot) resultsReply(language string, results services.Results) reply {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(bot.i18n.Translate(language, "bot.refresh"), callbackRefresh),
		),
	)
	return reply{text: bot.formatResults(language, results), keyboard: &keyboard}
}

func (bot *Bot) formatResults(language string, results services.Results) string {
	lines := services.ResultSummary(bot.i18n, language, results)
	if len(results.Recommendations) == 0 {
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "", bot.i18n.Translate(language, "results.recommendations"))
	for _, entry := range results.Recommendations {
		lines = append(lines, "• "+entry.Display())
	}
	return strings.Join(lines, "\n")
}
