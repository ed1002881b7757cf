package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/bloomly/internal/models"
)

var (
	ErrInvalidTransition   = errors.New("action not allowed in current step")
	ErrInvalidSnapshot     = errors.New("invalid wizard snapshot")
	ErrIdentifierRequired  = errors.New("identifier is required")
	ErrUnknownProvider     = errors.New("unknown login provider")
	ErrPeriodDatesRequired = errors.New("at least one period date is required")
	ErrUnknownMood         = errors.New("unknown mood")
)

// ValidationFailure reports a guard that kept the wizard on its current step.
type ValidationFailure struct {
	Step  models.Step
	Field string
	Err   error
}

func (failure *ValidationFailure) Error() string {
	return fmt.Sprintf("%s: %s: %v", failure.Step, failure.Field, failure.Err)
}

func (failure *ValidationFailure) Unwrap() error {
	return failure.Err
}

type OutcomePredictor interface {
	Predict(ctx context.Context, features models.FeatureVector) PredictionOutcome
}

type RecommendationLookup interface {
	Match(phase string, mood string) []models.RecommendationEntry
}

// PseudoIdentityFunc derives an identifier for provider logins, which are mocked.
type PseudoIdentityFunc func(provider string) (string, error)

type WizardDefaults struct {
	AverageCycleLength  int
	TypicalPeriodLength int
	Mood                string
}

type WizardOptions struct {
	Parser          DateParser
	Predictor       OutcomePredictor
	Recommendations RecommendationLookup
	PseudoIdentity  PseudoIdentityFunc
	Moods           []string
	Defaults        WizardDefaults
}

type LoginInput struct {
	Provider string `json:"provider" form:"provider"`
	Email    string `json:"email" form:"email"`
}

type CycleInput struct {
	Dates               []string `json:"dates" form:"dates"`
	Text                string   `json:"period_dates" form:"period_dates"`
	TypicalPeriodLength int      `json:"period_length" form:"period_length"`
	AverageCycleLength  int      `json:"cycle_length" form:"cycle_length"`
}

// CycleReport tells the user which date entries were dropped.
type CycleReport struct {
	Accepted int      `json:"accepted"`
	Rejected []string `json:"rejected"`
}

type SymptomMoodInput struct {
	Symptoms     []string `json:"symptoms" form:"symptoms"`
	SymptomsText string   `json:"symptoms_text" form:"symptoms_text"`
	Mood         string   `json:"mood" form:"mood"`
}

type Results struct {
	Features          models.FeatureVector         `json:"features"`
	Prediction        *models.PredictionResult     `json:"prediction,omitempty"`
	Failure           *PredictionFailure           `json:"error,omitempty"`
	Recommendations   []models.RecommendationEntry `json:"recommendations"`
	NoRecommendations bool                         `json:"no_recommendations"`
}

type WizardController struct {
	parser          DateParser
	predictor       OutcomePredictor
	recommendations RecommendationLookup
	pseudoIdentity  PseudoIdentityFunc
	moods           []string
	defaults        WizardDefaults
}

func NewWizardController(options WizardOptions) *WizardController {
	parser := options.Parser
	if parser == nil {
		parser = StrictDateParser{}
	}

	moods := make([]string, 0, len(options.Moods))
	for _, mood := range options.Moods {
		if trimmed := strings.TrimSpace(mood); trimmed != "" {
			moods = append(moods, trimmed)
		}
	}
	if len(moods) == 0 {
		moods = models.DefaultMoods()
	}

	defaults := options.Defaults
	defaults.AverageCycleLength, defaults.TypicalPeriodLength = ResolveCycleAndPeriodDefaults(defaults.AverageCycleLength, defaults.TypicalPeriodLength)
	if canonical, ok := canonicalMood(moods, defaults.Mood); ok {
		defaults.Mood = canonical
	} else if canonical, ok := canonicalMood(moods, models.DefaultMood); ok {
		defaults.Mood = canonical
	} else {
		defaults.Mood = moods[0]
	}

	return &WizardController{
		parser:          parser,
		predictor:       options.Predictor,
		recommendations: options.Recommendations,
		pseudoIdentity:  options.PseudoIdentity,
		moods:           moods,
		defaults:        defaults,
	}
}

func (controller *WizardController) Moods() []string {
	result := make([]string, len(controller.moods))
	copy(result, controller.moods)
	return result
}

func (controller *WizardController) DateLayouts() []string {
	return controller.parser.Layouts()
}

func (controller *WizardController) NewState() models.WizardState {
	return models.WizardState{
		Step:                models.StepSplash,
		PeriodHistory:       []time.Time{},
		TypicalPeriodLength: controller.defaults.TypicalPeriodLength,
		AverageCycleLength:  controller.defaults.AverageCycleLength,
		SymptomSelection:    models.SymptomSelection{},
		Mood:                controller.defaults.Mood,
	}
}

// RestoreState accepts an externally supplied snapshot, filling defaults and
// rejecting snapshots whose step is not reachable with the data they carry.
func (controller *WizardController) RestoreState(snapshot models.WizardState) (models.WizardState, error) {
	state := snapshot.Clone()
	if state.Step == 0 {
		state.Step = models.StepSplash
	}
	if !state.Step.IsValid() {
		return models.WizardState{}, fmt.Errorf("%w: step %d", ErrInvalidSnapshot, int(state.Step))
	}

	if state.AverageCycleLength == 0 {
		state.AverageCycleLength = controller.defaults.AverageCycleLength
	}
	if state.TypicalPeriodLength == 0 {
		state.TypicalPeriodLength = controller.defaults.TypicalPeriodLength
	}
	state.AverageCycleLength, state.TypicalPeriodLength = SanitizeCycleAndPeriod(state.AverageCycleLength, state.TypicalPeriodLength)

	state.PeriodHistory = NormalizePeriodHistory(state.PeriodHistory)
	state.SymptomSelection = state.SymptomSelection.Normalized()
	state.Identifier = strings.TrimSpace(state.Identifier)

	if strings.TrimSpace(state.Mood) == "" {
		state.Mood = controller.defaults.Mood
	}
	mood, ok := canonicalMood(controller.moods, state.Mood)
	if !ok {
		return models.WizardState{}, fmt.Errorf("%w: %v %q", ErrInvalidSnapshot, ErrUnknownMood, state.Mood)
	}
	state.Mood = mood

	if state.Step > models.StepLogin && state.Identifier == "" {
		return models.WizardState{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, ErrIdentifierRequired)
	}
	if state.Step > models.StepCycleInput && len(state.PeriodHistory) == 0 {
		return models.WizardState{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, ErrPeriodDatesRequired)
	}
	state.LastPrediction = nil
	return state, nil
}

// Continue leaves the splash screen.
func (controller *WizardController) Continue(state models.WizardState) (models.WizardState, error) {
	if err := requireStep(state, models.StepSplash, "continue"); err != nil {
		return state, err
	}
	next := state.Clone()
	next.Step = models.StepLogin
	return next, nil
}

func (controller *WizardController) Login(state models.WizardState, input LoginInput) (models.WizardState, error) {
	if err := requireStep(state, models.StepLogin, "login"); err != nil {
		return state, err
	}

	provider, ok := canonicalProvider(input.Provider)
	if !ok {
		return state, &ValidationFailure{Step: models.StepLogin, Field: "provider", Err: ErrUnknownProvider}
	}

	identifier := ""
	if provider == models.ProviderEmail {
		identifier = strings.ToLower(strings.TrimSpace(input.Email))
	} else if controller.pseudoIdentity != nil {
		derived, err := controller.pseudoIdentity(provider)
		if err != nil {
			return state, fmt.Errorf("derive pseudo identity: %w", err)
		}
		identifier = strings.TrimSpace(derived)
	}
	if identifier == "" {
		return state, &ValidationFailure{Step: models.StepLogin, Field: "email", Err: ErrIdentifierRequired}
	}

	next := state.Clone()
	next.Identifier = identifier
	next.LoginProvider = provider
	next.Step = models.StepCycleInput
	return next, nil
}

func (controller *WizardController) SubmitCycle(state models.WizardState, input CycleInput) (models.WizardState, CycleReport, error) {
	if err := requireStep(state, models.StepCycleInput, "submit cycle"); err != nil {
		return state, CycleReport{Rejected: []string{}}, err
	}

	entries := make([]string, 0, len(input.Dates))
	for _, raw := range input.Dates {
		entries = append(entries, SplitDateEntries(raw)...)
	}
	entries = append(entries, SplitDateEntries(input.Text)...)

	history, rejected := ParsePeriodHistory(controller.parser, entries)
	report := CycleReport{Accepted: len(history), Rejected: rejected}
	if len(history) == 0 {
		return state, report, &ValidationFailure{Step: models.StepCycleInput, Field: "period_dates", Err: ErrPeriodDatesRequired}
	}

	next := state.Clone()
	next.PeriodHistory = history

	cycleLength := next.AverageCycleLength
	if input.AverageCycleLength != 0 {
		cycleLength = input.AverageCycleLength
	}
	periodLength := next.TypicalPeriodLength
	if input.TypicalPeriodLength != 0 {
		periodLength = input.TypicalPeriodLength
	}
	next.AverageCycleLength, next.TypicalPeriodLength = SanitizeCycleAndPeriod(cycleLength, periodLength)
	next.Step = models.StepPMSMood
	return next, report, nil
}

func (controller *WizardController) SelectSymptoms(state models.WizardState, symptoms []string) (models.WizardState, error) {
	if err := requireStep(state, models.StepPMSMood, "select symptoms"); err != nil {
		return state, err
	}
	next := state.Clone()
	next.SymptomSelection = models.SymptomSelection(symptoms).Normalized()
	return next, nil
}

func (controller *WizardController) SelectMood(state models.WizardState, mood string) (models.WizardState, error) {
	if err := requireStep(state, models.StepPMSMood, "select mood"); err != nil {
		return state, err
	}
	canonical, ok := canonicalMood(controller.moods, mood)
	if !ok {
		return state, &ValidationFailure{Step: models.StepPMSMood, Field: "mood", Err: ErrUnknownMood}
	}
	next := state.Clone()
	next.Mood = canonical
	return next, nil
}

// Finish moves to results. Symptoms and mood always hold a value, so the
// transition itself cannot be refused; a prediction fault is reported inside
// Results and the wizard still stays on the results step.
func (controller *WizardController) Finish(ctx context.Context, state models.WizardState) (models.WizardState, Results, error) {
	if err := requireStep(state, models.StepPMSMood, "finish"); err != nil {
		return state, Results{}, err
	}

	next := state.Clone()
	next.Step = models.StepResults
	results := controller.compute(ctx, next)
	next.LastPrediction = results.Prediction
	return next, results, nil
}

// Submit records symptoms and mood and finishes in one action. Nil symptoms
// with empty text keep the current selection; an empty mood keeps the current mood.
func (controller *WizardController) Submit(ctx context.Context, state models.WizardState, input SymptomMoodInput) (models.WizardState, Results, error) {
	if err := requireStep(state, models.StepPMSMood, "submit symptoms"); err != nil {
		return state, Results{}, err
	}

	next := state
	if input.Symptoms != nil || strings.TrimSpace(input.SymptomsText) != "" {
		symptoms := append([]string{}, input.Symptoms...)
		symptoms = append(symptoms, SplitSymptomText(input.SymptomsText)...)
		selected, err := controller.SelectSymptoms(next, symptoms)
		if err != nil {
			return state, Results{}, err
		}
		next = selected
	}
	if strings.TrimSpace(input.Mood) != "" {
		selected, err := controller.SelectMood(next, input.Mood)
		if err != nil {
			return state, Results{}, err
		}
		next = selected
	}
	return controller.Finish(ctx, next)
}

// Results recomputes the outcome for a session already on the results step.
// It never changes the state, so repeated calls with the same state agree.
func (controller *WizardController) Results(ctx context.Context, state models.WizardState) (Results, error) {
	if err := requireStep(state, models.StepResults, "results"); err != nil {
		return Results{}, err
	}
	return controller.compute(ctx, state), nil
}

func (controller *WizardController) compute(ctx context.Context, state models.WizardState) Results {
	features := ExtractCycleFeatures(state.PeriodHistory, state.SymptomSelection, state.AverageCycleLength)
	results := Results{
		Features:        features,
		Recommendations: []models.RecommendationEntry{},
	}

	if controller.predictor == nil {
		results.Failure = &PredictionFailure{Message: predictionFailureMessage, Detail: "prediction service is not configured"}
		return results
	}
	outcome := controller.predictor.Predict(ctx, features)
	if !outcome.OK() {
		results.Failure = outcome.Failure
		if results.Failure == nil {
			results.Failure = &PredictionFailure{Message: predictionFailureMessage, Detail: "empty prediction outcome"}
		}
		return results
	}

	results.Prediction = outcome.Result
	if controller.recommendations != nil {
		results.Recommendations = controller.recommendations.Match(outcome.Result.CurrentPhase, state.Mood)
	}
	results.NoRecommendations = len(results.Recommendations) == 0
	return results
}

func requireStep(state models.WizardState, want models.Step, action string) error {
	if state.Step != want {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, state.Step)
	}
	return nil
}

func canonicalMood(moods []string, raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, mood := range moods {
		if strings.EqualFold(mood, trimmed) {
			return mood, true
		}
	}
	return "", false
}

func canonicalProvider(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.ProviderEmail, true
	}
	for _, provider := range models.LoginProviders() {
		if strings.EqualFold(provider, trimmed) {
			return provider, true
		}
	}
	return "", false
}

// SplitSymptomText splits free-typed symptoms on commas, semicolons and newlines.
func SplitSymptomText(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
}
