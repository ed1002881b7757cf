package models

// FeatureVector is the model input derived from one session.
type FeatureVector struct {
	PreviousCycleLength int `json:"previous_cycle_length"`
	PMSIndicator        int `json:"pms_indicator"`
}

// Row returns the features in the column order the classifiers were trained on.
func (vector FeatureVector) Row() []float64 {
	return []float64{float64(vector.PreviousCycleLength), float64(vector.PMSIndicator)}
}

type PredictionResult struct {
	NextPeriodDays        float64 `json:"next_period_days"`
	NextPeriodDaysRounded int     `json:"next_period_days_rounded"`
	CurrentPhase          string  `json:"current_phase"`
}
