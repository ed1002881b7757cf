package services

import "errors"

// MessageKey maps a wizard error to the locale key shown to users.
func MessageKey(err error) string {
	switch {
	case errors.Is(err, ErrIdentifierRequired):
		return "error.identifier_required"
	case errors.Is(err, ErrUnknownProvider):
		return "error.unknown_provider"
	case errors.Is(err, ErrPeriodDatesRequired):
		return "error.period_dates_required"
	case errors.Is(err, ErrUnknownMood):
		return "error.unknown_mood"
	case errors.Is(err, ErrInvalidTransition):
		return "error.invalid_transition"
	case errors.Is(err, ErrInvalidSnapshot):
		return "error.invalid_snapshot"
	default:
		return "error.invalid_input"
	}
}
