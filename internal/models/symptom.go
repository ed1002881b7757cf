package models

import "strings"

// SymptomNone is the sentinel a user picks to report no PMS symptoms.
const SymptomNone = "None"

type BuiltinSymptom struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func DefaultBuiltinSymptoms() []BuiltinSymptom {
	return []BuiltinSymptom{
		{Name: "Cramps", Icon: "🩸"},
		{Name: "Headache", Icon: "🤕"},
		{Name: "Mood swings", Icon: "😢"},
		{Name: "Bloating", Icon: "🎈"},
		{Name: "Fatigue", Icon: "😴"},
		{Name: "Breast tenderness", Icon: "💔"},
		{Name: "Acne", Icon: "🔴"},
		{Name: "Back pain", Icon: "🦴"},
		{Name: "Nausea", Icon: "🤢"},
		{Name: "Irritability", Icon: "😤"},
		{Name: "Insomnia", Icon: "🌙"},
		{Name: "Food cravings", Icon: "🍫"},
	}
}

// SymptomSelection holds the tags a user picked on the symptoms step.
type SymptomSelection []string

// HasPMS reports whether any tag other than the "None" sentinel is present.
func (selection SymptomSelection) HasPMS() bool {
	for _, tag := range selection {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" || strings.EqualFold(trimmed, SymptomNone) {
			continue
		}
		return true
	}
	return false
}

// Normalized drops blank tags and duplicates, keeping first-seen order.
func (selection SymptomSelection) Normalized() SymptomSelection {
	result := make(SymptomSelection, 0, len(selection))
	seen := make(map[string]struct{}, len(selection))
	for _, tag := range selection {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
