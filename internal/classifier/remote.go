package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
)

const defaultRemoteTimeout = 10 * time.Second

type remoteRequest struct {
	Features [][]float64 `json:"features"`
}

type remoteResponse struct {
	Predictions []json.RawMessage `json:"predictions"`
	Classes     []string          `json:"classes,omitempty"`
}

// remoteModel forwards rows to a model server that owns the trained artifact.
type remoteModel struct {
	endpoint string
	client   *http.Client
	output   OutputKind
	features int
	classes  []string
}

func newRemoteModel(artifact Artifact, output OutputKind, timeout time.Duration) (*remoteModel, error) {
	if artifact.Remote == nil || strings.TrimSpace(artifact.Remote.URL) == "" {
		return nil, fmt.Errorf("%w: remote artifact has no url", ErrArtifactInvalid)
	}
	parsed, err := url.Parse(strings.TrimSpace(artifact.Remote.URL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: remote url %q", ErrArtifactInvalid, artifact.Remote.URL)
	}
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}

	return &remoteModel{
		endpoint: parsed.String(),
		client:   &http.Client{Timeout: timeout},
		output:   output,
		features: artifact.NFeatures,
		classes:  copyClasses(artifact.Classes),
	}, nil
}

func (model *remoteModel) Predict(ctx context.Context, rows [][]float64) ([]Output, error) {
	if err := checkRows(rows, model.features); err != nil {
		return nil, err
	}

	body, err := json.Marshal(remoteRequest{Features: rows})
	if err != nil {
		return nil, fmt.Errorf("encode remote request: %w", err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, model.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build remote request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	response, err := model.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("call model server: %w", err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read model server response: %w", err)
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model server returned %d: %s", response.StatusCode, strings.TrimSpace(string(payload)))
	}

	decoded := remoteResponse{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode model server response: %w", err)
	}
	if len(decoded.Classes) > 0 && len(model.classes) > 0 && !slices.Equal(decoded.Classes, model.classes) {
		return nil, fmt.Errorf("%w: model server classes %v differ from artifact classes %v", ErrArtifactInvalid, decoded.Classes, model.classes)
	}
	if len(decoded.Predictions) != len(rows) {
		return nil, fmt.Errorf("%w: model server returned %d predictions for %d rows", ErrFeatureShape, len(decoded.Predictions), len(rows))
	}

	outputs := make([]Output, 0, len(decoded.Predictions))
	for _, raw := range decoded.Predictions {
		output, err := model.decodePrediction(raw)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, output)
	}
	return outputs, nil
}

// decodePrediction trusts the JSON type over the declared output: a string is
// always a label, a number is a value or an index.
func (model *remoteModel) decodePrediction(raw json.RawMessage) (Output, error) {
	var label string
	if err := json.Unmarshal(raw, &label); err == nil {
		return Output{Kind: OutputLabel, Label: label}, nil
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err != nil {
		return Output{}, fmt.Errorf("decode prediction %s: %w", string(raw), err)
	}
	kind := OutputValue
	if model.output == OutputIndex {
		kind = OutputIndex
	}
	return Output{Kind: kind, Value: number}, nil
}

func (model *remoteModel) Classes() []string {
	return copyClasses(model.classes)
}
