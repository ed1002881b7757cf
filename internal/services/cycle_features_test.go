package services

import (
	"testing"
	"time"

	"github.com/terraincognita07/bloomly/internal/models"
)

func TestExtractCycleFeaturesUsesMostRecentInterval(t *testing.T) {
	history := []time.Time{
		mustParseDay("2025-09-01"),
		mustParseDay("2025-10-15"),
		mustParseDay("2025-11-04"),
		mustParseDay("2025-12-01"),
	}

	features := ExtractCycleFeatures(history, nil, 28)
	if features.PreviousCycleLength != 27 {
		t.Fatalf("expected previous cycle length 27, got %d", features.PreviousCycleLength)
	}
}

func TestExtractCycleFeaturesSortsBeforeDiffing(t *testing.T) {
	history := []time.Time{
		mustParseDay("2025-12-28"),
		mustParseDay("2025-11-20"),
		mustParseDay("2025-12-01"),
	}

	features := ExtractCycleFeatures(history, nil, 28)
	if features.PreviousCycleLength != 27 {
		t.Fatalf("expected previous cycle length 27, got %d", features.PreviousCycleLength)
	}
}

func TestExtractCycleFeaturesFallsBackToConfiguredAverage(t *testing.T) {
	single := []time.Time{mustParseDay("2025-12-01")}
	if got := ExtractCycleFeatures(single, nil, 31).PreviousCycleLength; got != 31 {
		t.Fatalf("expected fallback 31 for one date, got %d", got)
	}
	if got := ExtractCycleFeatures(nil, nil, 26).PreviousCycleLength; got != 26 {
		t.Fatalf("expected fallback 26 for empty history, got %d", got)
	}
}

func TestExtractCycleFeaturesIgnoresDSTShift(t *testing.T) {
	location, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	history := []time.Time{
		time.Date(2025, 3, 10, 0, 0, 0, 0, location),
		time.Date(2025, 4, 7, 0, 0, 0, 0, location),
	}

	if got := ExtractCycleFeatures(history, nil, 28).PreviousCycleLength; got != 28 {
		t.Fatalf("expected 28 days across DST change, got %d", got)
	}
}

func TestExtractCycleFeaturesPMSIndicator(t *testing.T) {
	tests := []struct {
		selection models.SymptomSelection
		want      int
	}{
		{selection: nil, want: 0},
		{selection: models.SymptomSelection{"None"}, want: 0},
		{selection: models.SymptomSelection{"Cramps"}, want: 1},
		{selection: models.SymptomSelection{"Bloating", "Headache"}, want: 1},
	}
	for _, tt := range tests {
		if got := ExtractCycleFeatures(nil, tt.selection, 28).PMSIndicator; got != tt.want {
			t.Errorf("PMSIndicator for %v = %d, want %d", tt.selection, got, tt.want)
		}
	}
}

func TestSanitizeCycleAndPeriod(t *testing.T) {
	cycle, period := SanitizeCycleAndPeriod(20, 19)
	if cycle != 20 || period != 12 {
		t.Fatalf("SanitizeCycleAndPeriod() = (%d, %d), want (20, 12)", cycle, period)
	}

	cycle, period = SanitizeCycleAndPeriod(200, 0)
	if cycle != MaxCycleLength || period != MinPeriodLength {
		t.Fatalf("SanitizeCycleAndPeriod() = (%d, %d), want (%d, %d)", cycle, period, MaxCycleLength, MinPeriodLength)
	}
}

func mustParseDay(raw string) time.Time {
	parsed, err := time.ParseInLocation(isoDateLayout, raw, time.UTC)
	if err != nil {
		panic(err)
	}
	return parsed
}
