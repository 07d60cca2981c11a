// Package model loads and evaluates the exported heart-disease classifier
// artifact. The artifact is treated as opaque trained state: this package
// only walks it, it never trains or mutates it.
package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/heartguard-server/internal/domain"
)

// ErrUnavailable indicates the classifier artifact could not be resolved
// from any configured source.
var ErrUnavailable = errors.New("classifier artifact unavailable")

// ErrPrediction indicates the loaded artifact failed to score a record.
var ErrPrediction = errors.New("prediction failed")

// TreeNode is one node of a regression tree. Leaves carry Feature == -1
// and a margin contribution in Value; interior nodes route on
// features[Feature] < Threshold.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Tree is a single regression tree, nodes indexed from the root at 0.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// Artifact is the exported form of the trained gradient-boosted
// classifier: the feature schema it was fitted on, a base margin, and the
// tree ensemble. Tree margins sum with the base score and pass through the
// logistic link to yield a probability.
type Artifact struct {
	Version   string   `json:"version"`
	Features  []string `json:"features"`
	BaseScore float64  `json:"base_score"`
	Trees     []Tree   `json:"trees"`
}

// Model is a loaded, validated artifact ready for scoring.
type Model struct {
	artifact Artifact
}

// New validates an artifact against the expected feature schema and wraps
// it for scoring.
func New(artifact Artifact) (*Model, error) {
	if len(artifact.Trees) == 0 {
		return nil, fmt.Errorf("artifact has no trees")
	}
	if len(artifact.Features) != len(domain.FeatureColumns) {
		return nil, fmt.Errorf("artifact has %d features, trained schema has %d",
			len(artifact.Features), len(domain.FeatureColumns))
	}
	for i, name := range domain.FeatureColumns {
		if artifact.Features[i] != name {
			return nil, fmt.Errorf("artifact feature %d is %q, trained schema expects %q",
				i, artifact.Features[i], name)
		}
	}
	for ti, tree := range artifact.Trees {
		if len(tree.Nodes) == 0 {
			return nil, fmt.Errorf("tree %d is empty", ti)
		}
		for ni, node := range tree.Nodes {
			if node.Feature >= len(artifact.Features) {
				return nil, fmt.Errorf("tree %d node %d references feature %d", ti, ni, node.Feature)
			}
			if node.Feature >= 0 {
				if node.Left < 0 || node.Left >= len(tree.Nodes) ||
					node.Right < 0 || node.Right >= len(tree.Nodes) {
					return nil, fmt.Errorf("tree %d node %d has out-of-range children", ti, ni)
				}
			}
		}
	}
	return &Model{artifact: artifact}, nil
}

// Decode reads and validates an artifact from a JSON stream.
func Decode(r io.Reader) (*Model, error) {
	var artifact Artifact
	if err := json.NewDecoder(r).Decode(&artifact); err != nil {
		return nil, fmt.Errorf("decoding artifact: %w", err)
	}
	return New(artifact)
}

// LoadFile reads and validates an artifact from disk.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening artifact %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Version returns the artifact version string.
func (m *Model) Version() string {
	return m.artifact.Version
}

// PredictProbability scores a parameter record and returns the probability
// of disease in [0,1].
func (m *Model) PredictProbability(ctx context.Context, params domain.PatientParameters) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	features := params.FeatureVector()
	margin := m.artifact.BaseScore
	for ti := range m.artifact.Trees {
		leaf, err := m.evaluateTree(ti, features)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrPrediction, err)
		}
		margin += leaf
	}

	return sigmoid(margin), nil
}

// evaluateTree walks one tree from the root to a leaf.
func (m *Model) evaluateTree(treeIndex int, features []float64) (float64, error) {
	tree := m.artifact.Trees[treeIndex]
	idx := 0
	// Bounded by node count so a malformed cycle cannot spin forever.
	for steps := 0; steps <= len(tree.Nodes); steps++ {
		node := tree.Nodes[idx]
		if node.Feature < 0 {
			return node.Value, nil
		}
		if features[node.Feature] < node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
	return 0, fmt.Errorf("tree %d walk did not reach a leaf", treeIndex)
}

func sigmoid(margin float64) float64 {
	return 1.0 / (1.0 + math.Exp(-margin))
}
