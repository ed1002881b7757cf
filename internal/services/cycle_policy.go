package services

import "github.com/terraincognita07/bloomly/internal/models"

const (
	MinCycleLength  = 15
	MaxCycleLength  = 90
	MinPeriodLength = 1
	MaxPeriodLength = 14

	minNonPeriodDays = 8
)

func SanitizeCycleAndPeriod(cycleLength int, periodLength int) (int, int) {
	safeCycleLength := ClampCycleLength(cycleLength)
	safePeriodLength := ClampPeriodLength(periodLength)

	if safeCycleLength-safePeriodLength < minNonPeriodDays {
		safePeriodLength = safeCycleLength - minNonPeriodDays
		if safePeriodLength < MinPeriodLength {
			safePeriodLength = MinPeriodLength
		}
	}

	return safeCycleLength, safePeriodLength
}

func ClampCycleLength(value int) int {
	if value < MinCycleLength {
		return MinCycleLength
	}
	if value > MaxCycleLength {
		return MaxCycleLength
	}
	return value
}

func ClampPeriodLength(value int) int {
	if value < MinPeriodLength {
		return MinPeriodLength
	}
	if value > MaxPeriodLength {
		return MaxPeriodLength
	}
	return value
}

func IsValidCycleLength(value int) bool {
	return value >= MinCycleLength && value <= MaxCycleLength
}

func IsValidPeriodLength(value int) bool {
	return value >= MinPeriodLength && value <= MaxPeriodLength
}

// ResolveCycleAndPeriodDefaults replaces out-of-range lengths with the
// built-in defaults rather than clamping them.
func ResolveCycleAndPeriodDefaults(cycleLength int, periodLength int) (int, int) {
	resolvedCycleLength := cycleLength
	if !IsValidCycleLength(resolvedCycleLength) {
		resolvedCycleLength = models.DefaultCycleLength
	}

	resolvedPeriodLength := periodLength
	if !IsValidPeriodLength(resolvedPeriodLength) {
		resolvedPeriodLength = models.DefaultPeriodLength
	}

	return resolvedCycleLength, resolvedPeriodLength
}
