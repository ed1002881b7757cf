package models

import "testing"

func TestSymptomSelectionHasPMS(t *testing.T) {
	tests := []struct {
		name      string
		selection SymptomSelection
		want      bool
	}{
		{name: "nil", selection: nil, want: false},
		{name: "empty", selection: SymptomSelection{}, want: false},
		{name: "none sentinel", selection: SymptomSelection{"None"}, want: false},
		{name: "none lower case", selection: SymptomSelection{" none "}, want: false},
		{name: "blank tags only", selection: SymptomSelection{"", "  "}, want: false},
		{name: "single symptom", selection: SymptomSelection{"Cramps"}, want: true},
		{name: "none mixed with symptom", selection: SymptomSelection{"None", "Headache"}, want: true},
	}
	for _, tt := range tests {
		if got := tt.selection.HasPMS(); got != tt.want {
			t.Errorf("%s: HasPMS() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSymptomSelectionNormalized(t *testing.T) {
	got := SymptomSelection{" Cramps", "", "cramps", "Bloating "}.Normalized()
	if len(got) != 2 || got[0] != "Cramps" || got[1] != "Bloating" {
		t.Fatalf("Normalized() = %#v, want [Cramps Bloating]", got)
	}
}

func TestDefaultBuiltinSymptomsExcludeSentinel(t *testing.T) {
	for _, symptom := range DefaultBuiltinSymptoms() {
		if symptom.Name == SymptomNone {
			t.Fatal("builtin catalog must not contain the None sentinel")
		}
		if symptom.Icon == "" {
			t.Fatalf("builtin symptom %q has no icon", symptom.Name)
		}
	}
}
