package services

// Translator resolves locale keys; *i18n.Manager satisfies it.
type Translator interface {
	Translate(language string, key string) string
	Translatef(language string, key string, args ...any) string
}

// ResultSummary renders the headline lines shown above recommendations: the
// prediction, or the generic failure message when there is none.
func ResultSummary(translator Translator, language string, results Results) []string {
	if results.Failure != nil || results.Prediction == nil {
		return []string{translator.Translate(language, "error.prediction_failed")}
	}

	lines := []string{
		translator.Translatef(language, "results.next_period", results.Prediction.NextPeriodDaysRounded),
		translator.Translatef(language, "results.phase", results.Prediction.CurrentPhase),
	}
	if results.NoRecommendations {
		lines = append(lines, translator.Translate(language, "results.no_recommendations"))
	}
	return lines
}
