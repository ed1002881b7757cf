// Package classifier loads predictor artifacts and evaluates them behind a
// single Predict contract. Artifacts are opaque to the rest of the service:
// callers only see Outputs and, for categorical models, the ordered class list.
package classifier

import (
	"context"
	"errors"
	"fmt"
)

type OutputKind int

const (
	OutputValue OutputKind = iota + 1
	OutputIndex
	OutputLabel
)

func (kind OutputKind) String() string {
	switch kind {
	case OutputValue:
		return "value"
	case OutputIndex:
		return "index"
	case OutputLabel:
		return "label"
	default:
		return fmt.Sprintf("OutputKind(%d)", int(kind))
	}
}

// Output is one prediction. Value holds numeric results and categorical
// indices; Label holds string results.
type Output struct {
	Kind  OutputKind
	Value float64
	Label string
}

type Classifier interface {
	Predict(ctx context.Context, rows [][]float64) ([]Output, error)
	Classes() []string
}

var (
	ErrFeatureShape     = errors.New("feature shape mismatch")
	ErrArtifactInvalid  = errors.New("invalid classifier artifact")
	ErrArtifactNotFound = errors.New("classifier artifact not found")
)

func checkRows(rows [][]float64, features int) error {
	if len(rows) == 0 {
		return fmt.Errorf("%w: no rows", ErrFeatureShape)
	}
	for index, row := range rows {
		if len(row) != features {
			return fmt.Errorf("%w: row %d has %d features, want %d", ErrFeatureShape, index, len(row), features)
		}
	}
	return nil
}

func copyClasses(classes []string) []string {
	if len(classes) == 0 {
		return nil
	}
	result := make([]string, len(classes))
	copy(result, classes)
	return result
}

// Unavailable stands in for an artifact that could not be loaded. Every call
// fails with the load error so the fault surfaces where predictions are made.
type Unavailable struct {
	Name string
	Err  error
}

func (model Unavailable) Predict(context.Context, [][]float64) ([]Output, error) {
	return nil, fmt.Errorf("classifier %s unavailable: %w", model.Name, model.Err)
}

func (model Unavailable) Classes() []string {
	return nil
}
