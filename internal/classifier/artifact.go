package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
)

const (
	KindTree   = "tree"
	KindLinear = "linear"
	KindRemote = "remote"
)

// Artifact is the on-disk description of a trained predictor.
type Artifact struct {
	Name      string      `json:"name" jsonschema:"description=Human readable model name"`
	Kind      string      `json:"kind" jsonschema:"enum=tree,enum=linear,enum=remote"`
	Output    string      `json:"output" jsonschema:"enum=value,enum=index,enum=label"`
	NFeatures int         `json:"n_features" jsonschema:"minimum=1"`
	Classes   []string    `json:"classes,omitempty" jsonschema:"description=Ordered label list for index outputs"`
	Tree      *TreeSpec   `json:"tree,omitempty"`
	Linear    *LinearSpec `json:"linear,omitempty"`
	Remote    *RemoteSpec `json:"remote,omitempty"`
}

type TreeSpec struct {
	Nodes []TreeNode `json:"nodes" jsonschema:"minItems=1"`
}

// TreeNode is either a split (rows with feature <= threshold go left) or a
// leaf carrying the prediction.
type TreeNode struct {
	Leaf      bool    `json:"leaf,omitempty"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Value     float64 `json:"value,omitempty"`
	Label     string  `json:"label,omitempty"`
}

type LinearSpec struct {
	Coefficients []float64 `json:"coefficients" jsonschema:"minItems=1"`
	Intercept    float64   `json:"intercept"`
}

type RemoteSpec struct {
	URL string `json:"url" jsonschema:"format=uri"`
}

func parseOutputKind(raw string) (OutputKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "value":
		return OutputValue, nil
	case "index":
		return OutputIndex, nil
	case "label":
		return OutputLabel, nil
	default:
		return 0, fmt.Errorf("%w: unknown output %q", ErrArtifactInvalid, raw)
	}
}

// LoadFile reads and validates an artifact, returning a ready classifier.
// Remote artifacts use timeout for every request.
func LoadFile(path string, timeout time.Duration) (Classifier, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}

	artifact := Artifact{}
	if err := json.Unmarshal(content, &artifact); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrArtifactInvalid, path, err)
	}
	return Build(artifact, timeout)
}

func Build(artifact Artifact, timeout time.Duration) (Classifier, error) {
	output, err := parseOutputKind(artifact.Output)
	if err != nil {
		return nil, err
	}
	if artifact.NFeatures < 1 {
		return nil, fmt.Errorf("%w: n_features must be positive", ErrArtifactInvalid)
	}
	if output == OutputIndex && len(artifact.Classes) == 0 {
		return nil, fmt.Errorf("%w: index output requires classes", ErrArtifactInvalid)
	}

	switch strings.ToLower(strings.TrimSpace(artifact.Kind)) {
	case KindTree:
		return newTreeModel(artifact, output)
	case KindLinear:
		return newLinearModel(artifact, output)
	case KindRemote:
		return newRemoteModel(artifact, output, timeout)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrArtifactInvalid, artifact.Kind)
	}
}
