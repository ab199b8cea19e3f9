package graphologyws

import (
	"log/slog"
	"strconv"
	"sync"

	"github.com/psidex/protnet/internal/graph"
	"github.com/psidex/protnet/internal/graphs"
	"github.com/psidex/protnet/internal/graphs/graphology"
	"github.com/psidex/protnet/internal/hubs"
	"github.com/psidex/protnet/internal/lib"
)

// JSONWriter is satisfied by lib.ThreadSafeWebSocket.
type JSONWriter interface {
	WriteJSON(v interface{}) error
}

// GraphologyWs defines a WebsocketGraphProvider that sends Graphology data to the
// frontend as JSON messages over a websocket.
type GraphologyWs struct {
	mu     *sync.Mutex
	ws     JSONWriter
	logger *slog.Logger
	// Keep track of nodes and edges so we know what's been sent.
	seenNodes lib.Set[string]
	seenEdges lib.Set[string]
	edgeCount int
	depth     int
}

var _ graphs.WebsocketGraphProvider = (*GraphologyWs)(nil)

func NewGraphologyWs(ws JSONWriter, logger *slog.Logger) *GraphologyWs {
	return &GraphologyWs{
		mu:        &sync.Mutex{},
		ws:        ws,
		logger:    logger,
		seenNodes: lib.NewSet[string](),
		seenEdges: lib.NewSet[string](),
	}
}

func (g *GraphologyWs) send(m Message) {
	if err := g.ws.WriteJSON(m); err != nil {
		g.logger.Warn("ws write failed", "type", m.Type, "error", err)
	}
}

func (g *GraphologyWs) AddNode(n *graph.Node, hub bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.seenNodes.Contains(n.ID) {
		return
	}
	g.seenNodes.Add(n.ID)
	g.send(nodeMessage(graphology.ToNode(n, hub)))
}

func (g *GraphologyWs) AddEdge(e graph.Edge) {
	g.mu.Lock()
	defer g.mu.Unlock()

	// Check if we've seen this edge before in either direction.
	edgeStr := e.Source + "\t" + e.Target
	inverseEdgeStr := e.Target + "\t" + e.Source
	if g.seenEdges.Contains(edgeStr) || g.seenEdges.Contains(inverseEdgeStr) {
		return
	}
	g.seenEdges.Add(edgeStr)
	g.edgeCount++

	// Generated keys are prefixed so they can't collide with numeric backend IDs.
	key := e.ID
	if key == "" {
		key = "e" + strconv.Itoa(g.edgeCount)
	}
	g.send(edgeMessage(edgeData{Key: key, Source: e.Source, Target: e.Target}))
}

// SetDepth records how many subsets deep the session is, it is reported with every
// subset notification.
func (g *GraphologyWs) SetDepth(depth int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.depth = depth
}

func (g *GraphologyWs) NotifySubset(nodes []*graph.Node, t *hubs.Threshold, mode hubs.Mode) {
	g.mu.Lock()
	defer g.mu.Unlock()

	data := SubsetData{
		Keys:      graph.NodeIDs(nodes),
		Count:     len(nodes),
		Depth:     g.depth,
		Threshold: t,
	}
	if mode.Valid() {
		data.Mode = mode.String()
	}
	g.send(subsetMessage(data))
}
