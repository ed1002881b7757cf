package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/terraincognita07/bloomly/internal/models"
)

// MatchMode selects the key set used to look up recommendations.
type MatchMode string

const (
	MatchAuto      MatchMode = "auto"
	MatchPhase     MatchMode = "phase"
	MatchPhaseMood MatchMode = "phase_mood"
)

var (
	ErrUnknownMatchMode   = errors.New("unknown recommendation match mode")
	ErrMoodColumnRequired = errors.New("recommendation table has no mood column")
)

func ParseMatchMode(raw string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", MatchAuto:
		return MatchAuto, nil
	case MatchPhase:
		return MatchPhase, nil
	case MatchPhaseMood, "phase+mood":
		return MatchPhaseMood, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMatchMode, raw)
	}
}

// ResolveMatchMood decides whether mood is part of the key for a table.
func ResolveMatchMood(mode MatchMode, tableHasMood bool) (bool, error) {
	switch mode {
	case MatchPhase:
		return false, nil
	case MatchPhaseMood:
		if !tableHasMood {
			return false, ErrMoodColumnRequired
		}
		return true, nil
	case MatchAuto, "":
		return tableHasMood, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownMatchMode, mode)
	}
}

// RecommendationMatcher filters a private, read-only copy of the table, so
// concurrent sessions can share one matcher.
type RecommendationMatcher struct {
	entries   []models.RecommendationEntry
	matchMood bool
}

func NewRecommendationMatcher(entries []models.RecommendationEntry, matchMood bool) *RecommendationMatcher {
	owned := make([]models.RecommendationEntry, len(entries))
	copy(owned, entries)
	return &RecommendationMatcher{entries: owned, matchMood: matchMood}
}

func (matcher *RecommendationMatcher) MatchesMood() bool {
	return matcher.matchMood
}

func (matcher *RecommendationMatcher) Len() int {
	return len(matcher.entries)
}

// Match returns entries equal on phase (and mood when keyed on it), in table
// order. No match yields an empty, non-nil slice.
func (matcher *RecommendationMatcher) Match(phase string, mood string) []models.RecommendationEntry {
	matched := make([]models.RecommendationEntry, 0)
	for _, entry := range matcher.entries {
		if entry.Phase != phase {
			continue
		}
		if matcher.matchMood && entry.Mood != mood {
			continue
		}
		matched = append(matched, entry)
	}
	return matched
}
