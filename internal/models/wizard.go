package models

import "time"

const (
	DefaultCycleLength  = 28
	DefaultPeriodLength = 5
	DefaultMood         = "Good"
)

const (
	ProviderGoogle    = "Google"
	ProviderMicrosoft = "Microsoft"
	ProviderEmail     = "Email"
)

func LoginProviders() []string {
	return []string{ProviderGoogle, ProviderMicrosoft, ProviderEmail}
}

func DefaultMoods() []string {
	return []string{"Great", "Good", "Okay", "Not Great", "Bad"}
}

// WizardState is the full record of one intake session. Transitions take a
// state value and return a new one; nothing else writes to it.
type WizardState struct {
	Step                Step              `json:"step"`
	Identifier          string            `json:"identifier,omitempty"`
	LoginProvider       string            `json:"login_provider,omitempty"`
	PeriodHistory       []time.Time       `json:"period_history"`
	TypicalPeriodLength int               `json:"typical_period_length"`
	AverageCycleLength  int               `json:"average_cycle_length"`
	SymptomSelection    SymptomSelection  `json:"symptom_selection"`
	Mood                string            `json:"mood"`
	LastPrediction      *PredictionResult `json:"last_prediction,omitempty"`
}

// Clone returns a copy that shares no slices or pointers with the receiver.
func (state WizardState) Clone() WizardState {
	cloned := state
	if state.PeriodHistory != nil {
		cloned.PeriodHistory = append([]time.Time(nil), state.PeriodHistory...)
	}
	if state.SymptomSelection != nil {
		cloned.SymptomSelection = append(SymptomSelection(nil), state.SymptomSelection...)
	}
	if state.LastPrediction != nil {
		prediction := *state.LastPrediction
		cloned.LastPrediction = &prediction
	}
	return cloned
}
