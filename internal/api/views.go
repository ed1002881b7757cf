package api

import (
	"time"

	"github.com/terraincognita07/bloomly/internal/models"
	"github.com/terraincognita07/bloomly/internal/services"
)

const viewDateLayout = "2006-01-02"

type stateView struct {
	Step                models.Step `json:"step"`
	Identifier          string      `json:"identifier,omitempty"`
	LoginProvider       string      `json:"login_provider,omitempty"`
	PeriodHistory       []string    `json:"period_history"`
	TypicalPeriodLength int         `json:"typical_period_length"`
	AverageCycleLength  int         `json:"average_cycle_length"`
	SymptomSelection    []string    `json:"symptom_selection"`
	Mood                string      `json:"mood"`
}

func newStateView(state models.WizardState) stateView {
	history := make([]string, 0, len(state.PeriodHistory))
	for _, day := range state.PeriodHistory {
		history = append(history, day.Format(viewDateLayout))
	}
	symptoms := append([]string{}, state.SymptomSelection...)

	return stateView{
		Step:                state.Step,
		Identifier:          state.Identifier,
		LoginProvider:       state.LoginProvider,
		PeriodHistory:       history,
		TypicalPeriodLength: state.TypicalPeriodLength,
		AverageCycleLength:  state.AverageCycleLength,
		SymptomSelection:    symptoms,
		Mood:                state.Mood,
	}
}

// snapshotInput is the body accepted when a session starts from saved state.
// Dates use YYYY-MM-DD or RFC 3339.
type snapshotInput struct {
	Step                models.Step `json:"step"`
	Identifier          string      `json:"identifier"`
	LoginProvider       string      `json:"login_provider"`
	PeriodHistory       []string    `json:"period_history"`
	TypicalPeriodLength int         `json:"typical_period_length"`
	AverageCycleLength  int         `json:"average_cycle_length"`
	SymptomSelection    []string    `json:"symptom_selection"`
	Mood                string      `json:"mood"`
}

func (input snapshotInput) toState() (models.WizardState, error) {
	history := make([]time.Time, 0, len(input.PeriodHistory))
	for _, raw := range input.PeriodHistory {
		day, err := time.Parse(viewDateLayout, raw)
		if err != nil {
			day, err = time.Parse(time.RFC3339, raw)
		}
		if err != nil {
			return models.WizardState{}, &services.ParseFailure{Input: raw}
		}
		history = append(history, day)
	}

	return models.WizardState{
		Step:                input.Step,
		Identifier:          input.Identifier,
		LoginProvider:       input.LoginProvider,
		PeriodHistory:       history,
		TypicalPeriodLength: input.TypicalPeriodLength,
		AverageCycleLength:  input.AverageCycleLength,
		SymptomSelection:    models.SymptomSelection(input.SymptomSelection),
		Mood:                input.Mood,
	}, nil
}

type recommendationView struct {
	Phase          string `json:"phase"`
	Mood           string `json:"mood,omitempty"`
	Category       string `json:"category"`
	Recommendation string `json:"recommendation"`
	Text           string `json:"text"`
}

type resultsView struct {
	Features          models.FeatureVector        `json:"features"`
	Prediction        *models.PredictionResult    `json:"prediction,omitempty"`
	Error             *services.PredictionFailure `json:"error,omitempty"`
	Recommendations   []recommendationView        `json:"recommendations"`
	NoRecommendations bool                        `json:"no_recommendations"`
	Summary           []string                    `json:"summary"`
}

func (handler *Handler) newResultsView(language string, results services.Results) resultsView {
	view := resultsView{
		Features:          results.Features,
		Prediction:        results.Prediction,
		Recommendations:   make([]recommendationView, 0, len(results.Recommendations)),
		NoRecommendations: results.NoRecommendations,
	}
	for _, entry := range results.Recommendations {
		view.Recommendations = append(view.Recommendations, recommendationView{
			Phase:          entry.Phase,
			Mood:           entry.Mood,
			Category:       entry.Category,
			Recommendation: entry.Recommendation,
			Text:           entry.Display(),
		})
	}

	if results.Failure != nil {
		view.Error = &services.PredictionFailure{
			Message: handler.i18n.Translate(language, "error.prediction_failed"),
			Detail:  results.Failure.Detail,
		}
	}
	view.Summary = services.ResultSummary(handler.i18n, language, results)
	return view
}
