package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/terraincognita07/bloomly/internal/classifier"
	"github.com/terraincognita07/bloomly/internal/models"
)

const predictionFailureMessage = "prediction failed"

// PhaseDecoding pins how categorical outputs of the phase classifier are read.
type PhaseDecoding string

const (
	PhaseDecodingAuto  PhaseDecoding = "auto"
	PhaseDecodingIndex PhaseDecoding = "index"
	PhaseDecodingLabel PhaseDecoding = "label"
)

var ErrUnknownPhaseDecoding = errors.New("unknown phase decoding")

func ParsePhaseDecoding(raw string) (PhaseDecoding, error) {
	switch PhaseDecoding(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PhaseDecodingAuto:
		return PhaseDecodingAuto, nil
	case PhaseDecodingIndex:
		return PhaseDecodingIndex, nil
	case PhaseDecodingLabel:
		return PhaseDecodingLabel, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPhaseDecoding, raw)
	}
}

// PredictionFailure is returned instead of a result when a classifier faults.
// Message is safe to show to users; Detail carries the diagnostic.
type PredictionFailure struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (failure *PredictionFailure) Error() string {
	if failure.Detail == "" {
		return failure.Message
	}
	return failure.Message + ": " + failure.Detail
}

// PredictionOutcome carries exactly one of Result or Failure.
type PredictionOutcome struct {
	Result  *models.PredictionResult
	Failure *PredictionFailure
}

func (outcome PredictionOutcome) OK() bool {
	return outcome.Result != nil && outcome.Failure == nil
}

type PredictionService struct {
	nextPeriod classifier.Classifier
	phase      classifier.Classifier
	decoding   PhaseDecoding
}

func NewPredictionService(nextPeriod classifier.Classifier, phase classifier.Classifier, decoding PhaseDecoding) *PredictionService {
	if decoding == "" {
		decoding = PhaseDecodingAuto
	}
	return &PredictionService{
		nextPeriod: nextPeriod,
		phase:      phase,
		decoding:   decoding,
	}
}

func (service *PredictionService) Predict(ctx context.Context, features models.FeatureVector) PredictionOutcome {
	days, err := service.PredictNextPeriodDays(ctx, features)
	if err != nil {
		return failedOutcome("next period model", err)
	}
	phase, err := service.PredictPhase(ctx, features)
	if err != nil {
		return failedOutcome("cycle phase model", err)
	}

	return PredictionOutcome{Result: &models.PredictionResult{
		NextPeriodDays:        days,
		NextPeriodDaysRounded: int(math.RoundToEven(days)),
		CurrentPhase:          phase,
	}}
}

func (service *PredictionService) PredictNextPeriodDays(ctx context.Context, features models.FeatureVector) (float64, error) {
	output, err := predictSingle(ctx, service.nextPeriod, features)
	if err != nil {
		return 0, err
	}

	var days float64
	switch output.Kind {
	case classifier.OutputValue:
		days = output.Value
	case classifier.OutputLabel:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(output.Label), 64)
		if err != nil {
			return 0, fmt.Errorf("non-numeric prediction %q", output.Label)
		}
		days = parsed
	default:
		return 0, fmt.Errorf("unexpected %s output from a regressor", output.Kind)
	}

	if math.IsNaN(days) || math.IsInf(days, 0) {
		return 0, fmt.Errorf("prediction is not finite: %v", days)
	}
	if days < 0 {
		days = 0
	}
	return days, nil
}

// PredictPhase resolves index outputs against the phase classifier's own
// class list; labels pass through unchanged.
func (service *PredictionService) PredictPhase(ctx context.Context, features models.FeatureVector) (string, error) {
	output, err := predictSingle(ctx, service.phase, features)
	if err != nil {
		return "", err
	}

	switch output.Kind {
	case classifier.OutputLabel:
		if service.decoding == PhaseDecodingIndex {
			return "", fmt.Errorf("expected class index, got label %q", output.Label)
		}
		label := strings.TrimSpace(output.Label)
		if label == "" {
			return "", errors.New("empty phase label")
		}
		return label, nil
	case classifier.OutputIndex, classifier.OutputValue:
		if service.decoding == PhaseDecodingLabel {
			return "", fmt.Errorf("expected label, got class index %v", output.Value)
		}
		return decodeClassIndex(output.Value, service.phase.Classes())
	default:
		return "", fmt.Errorf("unexpected %s output from a classifier", output.Kind)
	}
}

func decodeClassIndex(value float64, classes []string) (string, error) {
	if value != math.Trunc(value) {
		return "", fmt.Errorf("class index %v is not an integer", value)
	}
	index := int(value)
	if index < 0 || index >= len(classes) {
		return "", fmt.Errorf("class index %d outside %d known classes", index, len(classes))
	}
	return classes[index], nil
}

func predictSingle(ctx context.Context, model classifier.Classifier, features models.FeatureVector) (output classifier.Output, err error) {
	if model == nil {
		return classifier.Output{}, errors.New("classifier is not configured")
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("classifier panicked: %v", recovered)
		}
	}()

	outputs, err := model.Predict(ctx, [][]float64{features.Row()})
	if err != nil {
		return classifier.Output{}, err
	}
	if len(outputs) != 1 {
		return classifier.Output{}, fmt.Errorf("expected 1 prediction, got %d", len(outputs))
	}
	return outputs[0], nil
}

func failedOutcome(source string, err error) PredictionOutcome {
	return PredictionOutcome{Failure: &PredictionFailure{
		Message: predictionFailureMessage,
		Detail:  source + ": " + err.Error(),
	}}
}
