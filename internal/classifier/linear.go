package classifier

import (
	"context"
	"fmt"
)

type linearModel struct {
	coefficients []float64
	intercept    float64
	classes      []string
}

func newLinearModel(artifact Artifact, output OutputKind) (*linearModel, error) {
	if artifact.Linear == nil {
		return nil, fmt.Errorf("%w: linear artifact has no coefficients", ErrArtifactInvalid)
	}
	if output != OutputValue {
		return nil, fmt.Errorf("%w: linear models only produce values", ErrArtifactInvalid)
	}
	if len(artifact.Linear.Coefficients) != artifact.NFeatures {
		return nil, fmt.Errorf("%w: %d coefficients for %d features", ErrArtifactInvalid, len(artifact.Linear.Coefficients), artifact.NFeatures)
	}

	coefficients := make([]float64, len(artifact.Linear.Coefficients))
	copy(coefficients, artifact.Linear.Coefficients)
	return &linearModel{
		coefficients: coefficients,
		intercept:    artifact.Linear.Intercept,
		classes:      copyClasses(artifact.Classes),
	}, nil
}

func (model *linearModel) Predict(ctx context.Context, rows [][]float64) ([]Output, error) {
	if err := checkRows(rows, len(model.coefficients)); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outputs := make([]Output, 0, len(rows))
	for _, row := range rows {
		total := model.intercept
		for index, coefficient := range model.coefficients {
			total += coefficient * row[index]
		}
		outputs = append(outputs, Output{Kind: OutputValue, Value: total})
	}
	return outputs, nil
}

func (model *linearModel) Classes() []string {
	return copyClasses(model.classes)
}
