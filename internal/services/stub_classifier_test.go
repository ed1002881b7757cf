package services

import (
	"context"

	"github.com/terraincognita07/bloomly/internal/classifier"
)

type stubClassifier struct {
	outputs []classifier.Output
	classes []string
	err     error
	panics  bool
	calls   int
	rows    [][]float64
}

func (stub *stubClassifier) Predict(_ context.Context, rows [][]float64) ([]classifier.Output, error) {
	stub.calls++
	stub.rows = rows
	if stub.panics {
		panic("corrupt artifact")
	}
	if stub.err != nil {
		return nil, stub.err
	}
	return stub.outputs, nil
}

func (stub *stubClassifier) Classes() []string {
	return stub.classes
}

func valueClassifier(value float64) *stubClassifier {
	return &stubClassifier{outputs: []classifier.Output{{Kind: classifier.OutputValue, Value: value}}}
}

func indexClassifier(index float64, classes ...string) *stubClassifier {
	return &stubClassifier{
		outputs: []classifier.Output{{Kind: classifier.OutputIndex, Value: index}},
		classes: classes,
	}
}

func labelClassifier(label string) *stubClassifier {
	return &stubClassifier{outputs: []classifier.Output{{Kind: classifier.OutputLabel, Label: label}}}
}
