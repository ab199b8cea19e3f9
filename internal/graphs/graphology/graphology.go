package graphology

import (
	"encoding/json"
	"os"
	"strconv"
	"sync"

	"github.com/psidex/protnet/internal/graph"
	"github.com/psidex/protnet/internal/graphs"
	"github.com/psidex/protnet/internal/lib"
)

// Graphology defines a CliGraphProvider that renders Graphology data to a JSON file.
// Node positions from the layout backend are kept so sigma.js can draw the graph
// without running its own layout.
type Graphology struct {
	mu              *sync.Mutex
	graphologyGraph *SerializedGraph
	seenNodes       lib.Set[string]
	seenEdges       lib.Set[string]
	edgeCount       int
}

var _ graphs.CliGraphProvider = (*Graphology)(nil)

func NewGraphology() *Graphology {
	return &Graphology{
		mu:              &sync.Mutex{},
		graphologyGraph: &SerializedGraph{Nodes: []Node{}, Edges: []Edge{}},
		seenNodes:       lib.NewSet[string](),
		seenEdges:       lib.NewSet[string](),
		edgeCount:       0,
	}
}

// ToNode converts a snapshot node to a graphology node.
func ToNode(n *graph.Node, hub bool) Node {
	attrs := NodeAttributes{
		X: n.X, Y: n.Y, Size: n.Size,
		Label: n.DisplayName(), Color: n.Color,
		Hub: hub,
	}
	if attrs.Size == 0 {
		attrs.Size = 2
	}
	if attrs.Color == "" {
		attrs.Color = "blue"
	}
	if hub {
		attrs.Color = "red"
	}
	if d, err := n.Degree(); err == nil {
		attrs.Degree = d
	}
	return Node{Key: n.ID, Attributes: attrs}
}

func (g *Graphology) AddNode(n *graph.Node, hub bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.seenNodes.Contains(n.ID) {
		return
	}
	g.seenNodes.Add(n.ID)
	g.graphologyGraph.Nodes = append(g.graphologyGraph.Nodes, ToNode(n, hub))
}

func (g *Graphology) AddEdge(e graph.Edge) {
	g.mu.Lock()
	defer g.mu.Unlock()

	edgeStr := e.Source + "\t" + e.Target
	inverseEdgeStr := e.Target + "\t" + e.Source

	if !g.seenEdges.Contains(edgeStr) && !g.seenEdges.Contains(inverseEdgeStr) {
		g.seenEdges.Add(edgeStr)
		g.edgeCount++
		key := e.ID
		if key == "" {
			key = strconv.Itoa(g.edgeCount)
		}
		g.graphologyGraph.Edges = append(g.graphologyGraph.Edges, Edge{
			Key:    key,
			Source: e.Source,
			Target: e.Target,
			Attributes: EdgeAttributes{
				Size:  1 + e.Score,
				Color: e.Color,
			},
		})
	}
}

func (g *Graphology) RenderToFile(filename string) (string, error) {
	filename = filename + ".json"

	g.mu.Lock()
	defer g.mu.Unlock()

	marshalled, err := json.Marshal(g.graphologyGraph)
	if err != nil {
		return "", err
	}

	return filename, os.WriteFile(filename, marshalled, 0o644)
}
