package services

import (
	"time"

	"github.com/terraincognita07/bloomly/internal/models"
)

// ExtractCycleFeatures derives the classifier inputs. Only the most recent
// interval counts toward the cycle length; with fewer than two dates the
// configured average is used instead.
func ExtractCycleFeatures(history []time.Time, selection models.SymptomSelection, averageCycleLength int) models.FeatureVector {
	vector := models.FeatureVector{PreviousCycleLength: averageCycleLength}

	normalized := NormalizePeriodHistory(history)
	if count := len(normalized); count >= 2 {
		vector.PreviousCycleLength = DaysBetween(normalized[count-2], normalized[count-1])
	}
	if selection.HasPMS() {
		vector.PMSIndicator = 1
	}
	return vector
}
