package models

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// Step is a position in the intake wizard.
type Step int

const (
	StepSplash Step = iota + 1
	StepLogin
	StepCycleInput
	StepPMSMood
	StepResults
)

var (
	stepNames  = [...]string{StepSplash: "splash", StepLogin: "login", StepCycleInput: "cycle_input", StepPMSMood: "pms_mood", StepResults: "results"}
	stepByName = map[string]Step{
		"splash":      StepSplash,
		"login":       StepLogin,
		"cycle_input": StepCycleInput,
		"pms_mood":    StepPMSMood,
		"results":     StepResults,
	}
)

var (
	_ fmt.Stringer             = Step(0)
	_ json.Marshaler           = Step(0)
	_ json.Unmarshaler         = (*Step)(nil)
	_ encoding.TextMarshaler   = Step(0)
	_ encoding.TextUnmarshaler = (*Step)(nil)
)

func (s Step) IsValid() bool {
	return s >= StepSplash && s <= StepResults
}

func (s Step) String() string {
	if s.IsValid() {
		return stepNames[s]
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

func (s Step) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid wizard step: %d", int(s))
	}
	return []byte(stepNames[s]), nil
}

func (s *Step) UnmarshalText(text []byte) error {
	value, ok := stepByName[string(text)]
	if !ok {
		return fmt.Errorf("invalid wizard step: %q", text)
	}
	*s = value
	return nil
}

func (s Step) MarshalJSON() ([]byte, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

func (s *Step) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid wizard step: %s", data)
	}
	return s.UnmarshalText([]byte(raw))
}
