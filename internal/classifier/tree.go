package classifier

import (
	"context"
	"fmt"
)

type treeModel struct {
	nodes    []TreeNode
	output   OutputKind
	features int
	classes  []string
}

func newTreeModel(artifact Artifact, output OutputKind) (*treeModel, error) {
	if artifact.Tree == nil || len(artifact.Tree.Nodes) == 0 {
		return nil, fmt.Errorf("%w: tree artifact has no nodes", ErrArtifactInvalid)
	}

	nodes := artifact.Tree.Nodes
	for index, node := range nodes {
		if node.Leaf {
			if output == OutputLabel && node.Label == "" {
				return nil, fmt.Errorf("%w: leaf %d has no label", ErrArtifactInvalid, index)
			}
			if output == OutputIndex && (node.Value < 0 || int(node.Value) >= len(artifact.Classes)) {
				return nil, fmt.Errorf("%w: leaf %d index %v outside classes", ErrArtifactInvalid, index, node.Value)
			}
			continue
		}
		if node.Feature < 0 || node.Feature >= artifact.NFeatures {
			return nil, fmt.Errorf("%w: node %d splits on feature %d", ErrArtifactInvalid, index, node.Feature)
		}
		if node.Left <= index || node.Left >= len(nodes) || node.Right <= index || node.Right >= len(nodes) {
			return nil, fmt.Errorf("%w: node %d has invalid children", ErrArtifactInvalid, index)
		}
	}

	return &treeModel{
		nodes:    nodes,
		output:   output,
		features: artifact.NFeatures,
		classes:  copyClasses(artifact.Classes),
	}, nil
}

func (model *treeModel) Predict(ctx context.Context, rows [][]float64) ([]Output, error) {
	if err := checkRows(rows, model.features); err != nil {
		return nil, err
	}

	outputs := make([]Output, 0, len(rows))
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		leaf := model.walk(row)
		outputs = append(outputs, Output{Kind: model.output, Value: leaf.Value, Label: leaf.Label})
	}
	return outputs, nil
}

// walk terminates because children always point forward in the node list.
func (model *treeModel) walk(row []float64) TreeNode {
	node := model.nodes[0]
	for !node.Leaf {
		if row[node.Feature] <= node.Threshold {
			node = model.nodes[node.Left]
		} else {
			node = model.nodes[node.Right]
		}
	}
	return node
}

func (model *treeModel) Classes() []string {
	return copyClasses(model.classes)
}
