package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/psidex/protnet/internal/lib"
)

func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := json.NewDecoder(r).Decode(snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, nil
}

// Validate rejects null nodes and fills in missing attribute maps. Snapshots decoded
// without ReadSnapshot must be validated before use.
func (snap *Snapshot) Validate() error {
	for i, n := range snap.Nodes {
		if n == nil {
			return fmt.Errorf("node %d is null", i)
		}
		if n.Attributes == nil {
			n.Attributes = Attributes{}
		}
	}
	return nil
}

func LoadSnapshot(filename string) (*Snapshot, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadSnapshot(file)
}

func WriteSnapshot(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// ComputeDegrees overwrites every node's Degree attribute with the number of
// distinct neighbours it has in snap.Edges. Edges are undirected, so a->b and b->a
// count once, and edges touching unknown nodes are ignored.
func ComputeDegrees(snap *Snapshot) {
	degrees := make(map[string]int, len(snap.Nodes))
	for _, n := range snap.Nodes {
		degrees[n.ID] = 0
	}

	seenEdges := lib.NewSet[string]()
	for _, e := range snap.Edges {
		if _, ok := degrees[e.Source]; !ok {
			continue
		}
		if _, ok := degrees[e.Target]; !ok {
			continue
		}

		// Tab can't appear in the IDs the backend produces.
		edgeStr := e.Source + "\t" + e.Target
		inverseEdgeStr := e.Target + "\t" + e.Source
		if seenEdges.Contains(edgeStr) || seenEdges.Contains(inverseEdgeStr) {
			continue
		}
		seenEdges.Add(edgeStr)

		degrees[e.Source]++
		if e.Source != e.Target {
			degrees[e.Target]++
		}
	}

	for _, n := range snap.Nodes {
		if n.Attributes == nil {
			n.Attributes = Attributes{}
		}
		n.Attributes[DegreeKey] = strconv.Itoa(degrees[n.ID])
	}
}

// Subset builds a snapshot out of nodes, which should be drawn from snap. The node
// pointers are shared with snap, only edges with both endpoints in nodes are kept.
func Subset(snap *Snapshot, nodes []*Node) *Snapshot {
	ids := lib.NewSet[string]()
	for _, n := range nodes {
		ids.Add(n.ID)
	}

	sub := &Snapshot{
		Nodes: nodes,
		Edges: []Edge{},
	}
	for _, e := range snap.Edges {
		if ids.Contains(e.Source) && ids.Contains(e.Target) {
			sub.Edges = append(sub.Edges, e)
		}
	}
	for _, id := range snap.Subgraph {
		if ids.Contains(id) {
			sub.Subgraph = append(sub.Subgraph, id)
		}
	}
	return sub
}

func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
