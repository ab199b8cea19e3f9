package graphs

import (
	"github.com/psidex/protnet/internal/graph"
	"github.com/psidex/protnet/internal/hubs"
)

// GraphProvider defines an interface that receives the nodes and edges of a snapshot.
type GraphProvider interface {
	// AddNode and AddEdge should be thread-safe. hub marks nodes at or above the hub
	// threshold.
	AddNode(n *graph.Node, hub bool)
	AddEdge(e graph.Edge)
}

// CliGraphProvider extends the GraphProvider interface to accommodate CLI
// functionality.
type CliGraphProvider interface {
	GraphProvider

	// RenderToFile is not assumed to be thread-safe.
	// filename should be the desired file name without an extension, the full name
	// of the written file is returned.
	RenderToFile(filename string) (string, error)
}

// WebsocketGraphProvider extends the GraphProvider interface to accommodate WebSocket
// functionality.
type WebsocketGraphProvider interface {
	GraphProvider

	// NotifySubset tells the client which nodes make up the active subset. t is nil
	// when the subset wasn't produced by a hub classification.
	NotifySubset(nodes []*graph.Node, t *hubs.Threshold, mode hubs.Mode)
}

// Populate feeds every node and edge of snap to p. Hubs are marked using t, which
// may be nil.
func Populate(p GraphProvider, snap *graph.Snapshot, t *hubs.Threshold) {
	for _, n := range snap.Nodes {
		hub := false
		if t != nil {
			if d, err := n.Degree(); err == nil {
				hub = t.IsHub(d)
			}
		}
		p.AddNode(n, hub)
	}
	for _, e := range snap.Edges {
		p.AddEdge(e)
	}
}
