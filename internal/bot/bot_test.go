package bot

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/terraincognita07/bloomly/internal/i18n"
	"github.com/terraincognita07/bloomly/internal/models"
	"github.com/terraincognita07/bloomly/internal/services"
	"github.com/terraincognita07/bloomly/internal/session"
)

const testChatID int64 = 4242

type recordingSender struct {
	sent     []tgbotapi.MessageConfig
	requests int
}

func (sender *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if message, ok := c.(tgbotapi.MessageConfig); ok {
		sender.sent = append(sender.sent, message)
	}
	return tgbotapi.Message{}, nil
}

func (sender *recordingSender) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	sender.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (sender *recordingSender) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	if len(sender.sent) == 0 {
		t.Fatal("expected a sent message")
	}
	return sender.sent[len(sender.sent)-1]
}

type fixedPredictor struct {
	phase string
	fail  bool
}

func (predictor fixedPredictor) Predict(_ context.Context, features models.FeatureVector) services.PredictionOutcome {
	if predictor.fail {
		return services.PredictionOutcome{Failure: &services.PredictionFailure{Message: "failed", Detail: "stub"}}
	}
	return services.PredictionOutcome{Result: &models.PredictionResult{
		NextPeriodDays:        float64(features.PreviousCycleLength) / 2,
		NextPeriodDaysRounded: features.PreviousCycleLength / 2,
		CurrentPhase:          predictor.phase,
	}}
}

func newTestBot(t *testing.T, predictor services.OutcomePredictor) (*Bot, *recordingSender, *session.Store) {
	t.Helper()

	manager, err := i18n.NewManager("en", i18n.Locales())
	if err != nil {
		t.Fatalf("init i18n: %v", err)
	}
	matcher := services.NewRecommendationMatcher([]models.RecommendationEntry{
		{Phase: "luteal", Mood: "Bad", Category: "Rest", Recommendation: "Take a warm bath"},
		{Phase: "luteal", Mood: "Good", Category: "Exercise", Recommendation: "Go for a walk"},
	}, true)
	wizard := services.NewWizardController(services.WizardOptions{
		Parser:          services.StrictDateParser{Location: time.UTC},
		Predictor:       predictor,
		Recommendations: matcher,
		PseudoIdentity: func(provider string) (string, error) {
			return strings.ToLower(provider) + ":guest", nil
		},
	})

	sender := &recordingSender{}
	sessions := session.NewStore()
	bot, err := New(sender, Options{Wizard: wizard, Sessions: sessions, I18n: manager})
	if err != nil {
		t.Fatalf("init bot: %v", err)
	}
	return bot, sender, sessions
}

func commandUpdate(command string) tgbotapi.Update {
	text := "/" + command
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: testChatID},
		From:     &tgbotapi.User{ID: 1, LanguageCode: "en"},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}}
}

func textUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: testChatID},
		From: &tgbotapi.User{ID: 1, LanguageCode: "en"},
	}}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		From:    &tgbotapi.User{ID: 1, LanguageCode: "en"},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: testChatID}},
	}}
}

func chatStep(t *testing.T, bot *Bot, sessions *session.Store) models.Step {
	t.Helper()
	current := bot.chatFor(testChatID, "")
	state, err := sessions.Get(current.sessionID)
	if err != nil {
		t.Fatalf("load chat session: %v", err)
	}
	return state.Step
}

func TestBotConversationReachesResults(t *testing.T) {
	bot, sender, sessions := newTestBot(t, fixedPredictor{phase: "luteal"})
	ctx := context.Background()

	bot.HandleUpdate(ctx, commandUpdate("start"))
	if keyboard, ok := sender.last(t).ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); !ok || keyboard.InlineKeyboard[0][0].CallbackData == nil || *keyboard.InlineKeyboard[0][0].CallbackData != callbackContinue {
		t.Fatalf("expected continue button, got %+v", sender.last(t).ReplyMarkup)
	}

	bot.HandleUpdate(ctx, callbackUpdate(callbackContinue))
	if got := chatStep(t, bot, sessions); got != models.StepLogin {
		t.Fatalf("expected login step, got %s", got)
	}

	bot.HandleUpdate(ctx, callbackUpdate(loginPrefix+models.ProviderEmail))
	if sender.last(t).Text != "Type your email address to continue." {
		t.Fatalf("expected email prompt, got %q", sender.last(t).Text)
	}
	bot.HandleUpdate(ctx, textUpdate("Sam@Example.com"))
	if got := chatStep(t, bot, sessions); got != models.StepCycleInput {
		t.Fatalf("expected cycle step, got %s", got)
	}

	bot.HandleUpdate(ctx, textUpdate("2025-12-01, soon\n2025-12-28"))
	if got := chatStep(t, bot, sessions); got != models.StepPMSMood {
		t.Fatalf("expected pms step, got %s", got)
	}
	rejectedNotice := sender.sent[len(sender.sent)-3].Text
	if !strings.Contains(rejectedNotice, "soon") {
		t.Fatalf("expected rejected entry notice, got %q", rejectedNotice)
	}

	bot.HandleUpdate(ctx, textUpdate("Cramps; Headache"))
	if !strings.Contains(sender.sent[len(sender.sent)-2].Text, "Cramps") {
		t.Fatalf("expected symptoms confirmation, got %q", sender.sent[len(sender.sent)-2].Text)
	}

	badIndex := -1
	for index, mood := range bot.wizard.Moods() {
		if mood == "Bad" {
			badIndex = index
		}
	}
	bot.HandleUpdate(ctx, callbackUpdate(moodPrefix+strconv.Itoa(badIndex)))
	if got := chatStep(t, bot, sessions); got != models.StepResults {
		t.Fatalf("expected results step, got %s", got)
	}

	results := sender.last(t).Text
	for _, want := range []string{"13 days", "luteal", "Rest: Take a warm bath"} {
		if !strings.Contains(results, want) {
			t.Fatalf("expected %q in results %q", want, results)
		}
	}
	if strings.Contains(results, "Go for a walk") {
		t.Fatalf("expected mood-filtered results, got %q", results)
	}

	bot.HandleUpdate(ctx, callbackUpdate(callbackRefresh))
	if sender.last(t).Text != results {
		t.Fatalf("expected refresh to repeat results, got %q", sender.last(t).Text)
	}
	if sender.requests != 4 {
		t.Fatalf("expected every callback to be acknowledged, got %d", sender.requests)
	}
}

func TestBotValidationKeepsStep(t *testing.T) {
	bot, sender, sessions := newTestBot(t, fixedPredictor{phase: "luteal"})
	ctx := context.Background()

	bot.HandleUpdate(ctx, commandUpdate("start"))
	bot.HandleUpdate(ctx, callbackUpdate(callbackContinue))
	bot.HandleUpdate(ctx, callbackUpdate(loginPrefix+models.ProviderGoogle))

	bot.HandleUpdate(ctx, textUpdate("next week"))
	if sender.last(t).Text != "Please enter at least one valid period start date." {
		t.Fatalf("expected localized validation message, got %q", sender.last(t).Text)
	}
	if got := chatStep(t, bot, sessions); got != models.StepCycleInput {
		t.Fatalf("expected to stay on cycle step, got %s", got)
	}
}

func TestBotRejectsOutOfOrderCallbacks(t *testing.T) {
	bot, sender, sessions := newTestBot(t, fixedPredictor{phase: "luteal"})
	ctx := context.Background()

	bot.HandleUpdate(ctx, commandUpdate("start"))
	bot.HandleUpdate(ctx, callbackUpdate(moodPrefix+"0"))
	if sender.last(t).Text != "This action is not available at the current step." {
		t.Fatalf("expected transition error, got %q", sender.last(t).Text)
	}
	bot.HandleUpdate(ctx, callbackUpdate(moodPrefix+"99"))
	if sender.last(t).Text != "Please pick one of the listed moods." {
		t.Fatalf("expected unknown mood message, got %q", sender.last(t).Text)
	}
	if got := chatStep(t, bot, sessions); got != models.StepSplash {
		t.Fatalf("expected splash step, got %s", got)
	}
}

func TestBotWithoutSessionAsksForRestart(t *testing.T) {
	bot, sender, sessions := newTestBot(t, fixedPredictor{phase: "luteal"})
	ctx := context.Background()

	bot.HandleUpdate(ctx, textUpdate("hello"))
	if sender.last(t).Text != "Send /start to begin a new intake." {
		t.Fatalf("expected restart hint, got %q", sender.last(t).Text)
	}

	bot.HandleUpdate(ctx, commandUpdate("start"))
	sessions.Sweep(time.Now().Add(time.Hour), time.Minute)
	bot.HandleUpdate(ctx, callbackUpdate(callbackContinue))
	if sender.last(t).Text != "Send /start to begin a new intake." {
		t.Fatalf("expected restart hint after expiry, got %q", sender.last(t).Text)
	}
}

func TestBotStartReplacesSession(t *testing.T) {
	bot, _, sessions := newTestBot(t, fixedPredictor{phase: "luteal"})
	ctx := context.Background()

	bot.HandleUpdate(ctx, commandUpdate("start"))
	bot.HandleUpdate(ctx, commandUpdate("start"))
	if sessions.Len() != 1 {
		t.Fatalf("expected one session, got %d", sessions.Len())
	}

	bot.HandleUpdate(ctx, commandUpdate("stop"))
	if sessions.Len() != 0 {
		t.Fatalf("expected stop to discard the session, got %d", sessions.Len())
	}
}

func TestBotForgetsChatsWithoutSession(t *testing.T) {
	bot, _, sessions := newTestBot(t, fixedPredictor{phase: "luteal"})
	ctx := context.Background()

	chatCount := func() int {
		bot.mu.Lock()
		defer bot.mu.Unlock()
		return len(bot.chats)
	}

	bot.HandleUpdate(ctx, textUpdate("hello"))
	bot.HandleUpdate(ctx, commandUpdate("help"))
	if got := chatCount(); got != 0 {
		t.Fatalf("expected no chat record before /start, got %d", got)
	}

	bot.HandleUpdate(ctx, commandUpdate("start"))
	if got := chatCount(); got != 1 {
		t.Fatalf("expected one chat record after /start, got %d", got)
	}
	bot.HandleUpdate(ctx, commandUpdate("stop"))
	if got := chatCount(); got != 0 {
		t.Fatalf("expected /stop to drop the chat record, got %d", got)
	}

	bot.HandleUpdate(ctx, commandUpdate("start"))
	sessions.Sweep(time.Now().Add(time.Hour), time.Minute)
	bot.HandleUpdate(ctx, callbackUpdate(callbackContinue))
	if got := chatCount(); got != 0 {
		t.Fatalf("expected an expired session to drop the chat record, got %d", got)
	}
}

func TestBotPredictionFailure(t *testing.T) {
	bot, sender, _ := newTestBot(t, fixedPredictor{fail: true})
	ctx := context.Background()

	bot.HandleUpdate(ctx, commandUpdate("start"))
	bot.HandleUpdate(ctx, callbackUpdate(callbackContinue))
	bot.HandleUpdate(ctx, callbackUpdate(loginPrefix+models.ProviderMicrosoft))
	bot.HandleUpdate(ctx, textUpdate("2025-12-01"))
	bot.HandleUpdate(ctx, callbackUpdate(callbackFinish))

	if sender.last(t).Text != "We could not calculate your prediction. Please try again later." {
		t.Fatalf("expected prediction failure message, got %q", sender.last(t).Text)
	}
}

func TestBotUsesChatLanguage(t *testing.T) {
	bot, sender, _ := newTestBot(t, fixedPredictor{phase: "luteal"})

	update := commandUpdate("start")
	update.Message.From.LanguageCode = "ru"
	bot.HandleUpdate(context.Background(), update)

	if want := bot.i18n.Translate("ru", "bot.welcome"); sender.last(t).Text != want {
		t.Fatalf("expected russian welcome %q, got %q", want, sender.last(t).Text)
	}
}

func TestFormatResultsWithoutRecommendations(t *testing.T) {
	bot, _, _ := newTestBot(t, fixedPredictor{phase: "luteal"})

	text := bot.formatResults("en", services.Results{
		Prediction:        &models.PredictionResult{NextPeriodDaysRounded: 3, CurrentPhase: "menstrual"},
		Recommendations:   []models.RecommendationEntry{},
		NoRecommendations: true,
	})
	if !strings.Contains(text, "3 days") || !strings.Contains(text, "No recommendations") {
		t.Fatalf("unexpected results text %q", text)
	}
}
