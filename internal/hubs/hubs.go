// Package hubs finds the hub nodes of a graph snapshot. A hub is a node whose degree
// reaches ceil(mean + stddev) of the degrees in the snapshot it is classified against.
package hubs

import (
	"errors"
	"fmt"
	"math"

	"github.com/psidex/protnet/internal/graph"
)

var (
	// ErrInvalidInput is returned for snapshots with fewer than two nodes or with a
	// node whose degree can't be parsed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidMode is returned for anything other than ShowHubs or HideHubs.
	ErrInvalidMode = errors.New("invalid mode")
)

// Threshold holds the degree statistics of one snapshot.
type Threshold struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Value  int     `json:"value"`
}

// ComputeThreshold uses the sample standard deviation, so at least two nodes are
// needed.
func ComputeThreshold(nodes []*graph.Node) (Threshold, error) {
	degrees, err := parseDegrees(nodes)
	if err != nil {
		return Threshold{}, err
	}
	return thresholdOf(degrees), nil
}

func parseDegrees(nodes []*graph.Node) ([]int, error) {
	if len(nodes) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 nodes, got %d", ErrInvalidInput, len(nodes))
	}

	degrees := make([]int, len(nodes))
	for i, n := range nodes {
		if n == nil {
			return nil, fmt.Errorf("%w: node %d is nil", ErrInvalidInput, i)
		}
		d, err := n.Degree()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		degrees[i] = d
	}
	return degrees, nil
}

// thresholdOf expects len(degrees) >= 2.
func thresholdOf(degrees []int) Threshold {
	n := float64(len(degrees))

	sum := 0
	for _, d := range degrees {
		sum += d
	}
	mean := float64(sum) / n

	varSum := 0.0
	for _, d := range degrees {
		diff := float64(d) - mean
		varSum += diff * diff
	}
	stdDev := math.Sqrt(varSum / (n - 1))

	return Threshold{
		Mean:   mean,
		StdDev: stdDev,
		Value:  int(math.Ceil(mean + stdDev)),
	}
}

// IsHub reports whether degree reaches the threshold.
func (t Threshold) IsHub(degree int) bool {
	return degree >= t.Value
}

// Select keeps the nodes on mode's side of the threshold, in their original order.
// The returned slice shares node pointers with nodes.
func (t Threshold) Select(nodes []*graph.Node, mode Mode) ([]*graph.Node, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMode, mode)
	}

	kept := []*graph.Node{}
	for _, n := range nodes {
		if n == nil {
			return nil, fmt.Errorf("%w: nil node", ErrInvalidInput)
		}
		d, err := n.Degree()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if t.IsHub(d) == (mode == ShowHubs) {
			kept = append(kept, n)
		}
	}
	return kept, nil
}

// Classify computes the threshold of nodes and returns the nodes on mode's side of
// it. Nothing is cached between calls, and nodes is never modified.
func Classify(nodes []*graph.Node, mode Mode) ([]*graph.Node, error) {
	kept, _, err := ClassifyWithThreshold(nodes, mode)
	return kept, err
}

// ClassifyWithThreshold is Classify that also returns the threshold it used.
func ClassifyWithThreshold(nodes []*graph.Node, mode Mode) ([]*graph.Node, Threshold, error) {
	if !mode.Valid() {
		return nil, Threshold{}, fmt.Errorf("%w: %v", ErrInvalidMode, mode)
	}

	t, err := ComputeThreshold(nodes)
	if err != nil {
		return nil, Threshold{}, err
	}

	kept, err := t.Select(nodes, mode)
	if err != nil {
		return nil, Threshold{}, err
	}
	return kept, t, nil
}

// Split partitions nodes into hubs and non-hubs against a single threshold.
func Split(nodes []*graph.Node) (hubNodes, others []*graph.Node, t Threshold, err error) {
	t, err = ComputeThreshold(nodes)
	if err != nil {
		return nil, nil, Threshold{}, err
	}
	for _, n := range nodes {
		// Degrees were already validated by ComputeThreshold.
		d, _ := n.Degree()
		if t.IsHub(d) {
			hubNodes = append(hubNodes, n)
		} else {
			others = append(others, n)
		}
	}
	return hubNodes, others, t, nil
}
