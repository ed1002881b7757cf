package services

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"
)

const isoDateLayout = "2006-01-02"

var ErrParseFailure = errors.New("unrecognized date")

// ParseFailure reports one date entry that could not be read. Callers drop
// the entry and keep collecting the rest.
type ParseFailure struct {
	Input string
}

func (failure *ParseFailure) Error() string {
	return "unrecognized date " + strconv.Quote(failure.Input)
}

func (failure *ParseFailure) Unwrap() error {
	return ErrParseFailure
}

type DateParser interface {
	Parse(raw string) (time.Time, error)
	Layouts() []string
}

type StrictDateParser struct {
	Location *time.Location
}

func (parser StrictDateParser) Parse(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	location := resolveLocation(parser.Location)
	parsed, err := time.ParseInLocation(isoDateLayout, trimmed, location)
	if err != nil {
		return time.Time{}, &ParseFailure{Input: raw}
	}
	return DateAtLocation(parsed, location), nil
}

func (parser StrictDateParser) Layouts() []string {
	return []string{isoDateLayout}
}

var permissiveLayouts = []string{
	isoDateLayout,
	"2006/01/02",
	"2006.01.02",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// PermissiveDateParser tries a fixed list of common layouts before giving up.
// Slash-separated day/month orders are ambiguous and deliberately absent.
type PermissiveDateParser struct {
	Location *time.Location
}

func (parser PermissiveDateParser) Parse(raw string) (time.Time, error) {
	cleaned := strings.Trim(strings.TrimSpace(raw), `"'.,;`)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return time.Time{}, &ParseFailure{Input: raw}
	}

	location := resolveLocation(parser.Location)
	for _, layout := range permissiveLayouts {
		parsed, err := time.ParseInLocation(layout, cleaned, location)
		if err == nil {
			return DateAtLocation(parsed, location), nil
		}
	}
	return time.Time{}, &ParseFailure{Input: raw}
}

func (parser PermissiveDateParser) Layouts() []string {
	result := make([]string, len(permissiveLayouts))
	copy(result, permissiveLayouts)
	return result
}

// SplitDateEntries splits free text into candidate date entries.
func SplitDateEntries(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r'
	})
	entries := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			entries = append(entries, trimmed)
		}
	}
	return entries
}

// ParsePeriodHistory parses every entry, skipping the ones that fail, and
// returns the accepted dates sorted ascending without duplicates.
func ParsePeriodHistory(parser DateParser, entries []string) ([]time.Time, []string) {
	history := make([]time.Time, 0, len(entries))
	rejected := make([]string, 0)
	for _, entry := range entries {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		day, err := parser.Parse(entry)
		if err != nil {
			rejected = append(rejected, entry)
			continue
		}
		history = append(history, day)
	}
	return NormalizePeriodHistory(history), rejected
}

// NormalizePeriodHistory reduces every entry to its calendar date, sorts the
// dates ascending and drops repeated days. Entries with different UTC offsets
// are ordered by the date they name, not by instant.
func NormalizePeriodHistory(history []time.Time) []time.Time {
	sorted := make([]time.Time, 0, len(history))
	for _, value := range history {
		year, month, day := value.Date()
		sorted = append(sorted, time.Date(year, month, day, 0, 0, 0, 0, value.Location()))
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return DaysBetween(sorted[i], sorted[j]) > 0
	})

	result := make([]time.Time, 0, len(sorted))
	for _, day := range sorted {
		if len(result) > 0 && sameDay(result[len(result)-1], day) {
			continue
		}
		result = append(result, day)
	}
	return result
}
