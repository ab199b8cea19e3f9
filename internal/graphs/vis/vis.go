package vis

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/psidex/protnet/internal/graph"
	"github.com/psidex/protnet/internal/graphs"
	"github.com/psidex/protnet/internal/lib"
)

// Vis defines a CliGraphProvider that renders to a HTML file which "replays" the
// snapshot node by node using vis.js. Hubs are drawn in red.
type Vis struct {
	mu        *sync.Mutex
	seenNodes lib.Set[string]
	seenEdges lib.Set[string]
	items     []string
}

var _ graphs.CliGraphProvider = (*Vis)(nil)

func NewVis() *Vis {
	return &Vis{
		mu:        &sync.Mutex{},
		seenNodes: lib.NewSet[string](),
		seenEdges: lib.NewSet[string](),
		items:     []string{},
	}
}

func (v *Vis) add(item interface{}) {
	itemJson, err := json.Marshal(item)
	if err != nil {
		// Only plain strings and ints are marshalled, this can't happen.
		return
	}
	v.items = append(v.items, string(itemJson))
}

func (v *Vis) AddNode(n *graph.Node, hub bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.seenNodes.Contains(n.ID) {
		return
	}
	v.seenNodes.Add(n.ID)

	data := nodeData{ID: n.ID, Label: n.DisplayName(), Title: n.ID}
	if d, err := n.Degree(); err == nil {
		data.Value = d
	}
	if hub {
		data.Color = "#d62728"
	}
	v.add(newNode(data))
}

func (v *Vis) AddEdge(e graph.Edge) {
	v.mu.Lock()
	defer v.mu.Unlock()

	edgeStr := e.Source + "\t" + e.Target
	inverseEdgeStr := e.Target + "\t" + e.Source
	if v.seenEdges.Contains(edgeStr) || v.seenEdges.Contains(inverseEdgeStr) {
		return
	}
	v.seenEdges.Add(edgeStr)
	v.add(newEdge(edgeData{From: e.Source, To: e.Target}))
}

func (v *Vis) output() string {
	if len(v.items) == 0 {
		return ""
	}
	return "\n" + strings.Join(v.items, ",\n")
}

func (v *Vis) RenderToFile(filename string) (string, error) {
	filename = filename + ".html"

	v.mu.Lock()
	defer v.mu.Unlock()

	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err = fmt.Fprintf(file, html, v.output()); err != nil {
		return "", err
	}

	return filename, nil
}
