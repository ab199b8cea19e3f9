package graphs

import (
	"encoding/json"
	"os"
	"sort"
	"sync"

	"github.com/psidex/protnet/internal/graph"
	"github.com/psidex/protnet/internal/lib"
)

// AdjacencyGraph defines a CliGraphProvider that keeps track of node neighbours using
// a map[string]Set and renders this to a JSON file, along with the list of hubs.
type AdjacencyGraph struct {
	mu        *sync.RWMutex
	neighbors map[string]lib.Set[string]
	hubs      lib.Set[string]
}

var _ CliGraphProvider = (*AdjacencyGraph)(nil)

func NewAdjacencyGraph() *AdjacencyGraph {
	return &AdjacencyGraph{
		mu:        &sync.RWMutex{},
		neighbors: make(map[string]lib.Set[string]),
		hubs:      lib.NewSet[string](),
	}
}

func (a *AdjacencyGraph) AddNode(n *graph.Node, hub bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.neighbors[n.ID]; !ok {
		a.neighbors[n.ID] = lib.NewSet[string]()
	}
	if hub {
		a.hubs.Add(n.ID)
	}
}

// AddEdge records both directions. Edges to nodes that were never added are ignored.
func (a *AdjacencyGraph) AddEdge(e graph.Edge) {
	a.mu.Lock()
	defer a.mu.Unlock()
	from, okFrom := a.neighbors[e.Source]
	to, okTo := a.neighbors[e.Target]
	if !okFrom || !okTo {
		return
	}
	from.Add(e.Target)
	to.Add(e.Source)
}

type adjacencyJson struct {
	Hubs      []string            `json:"hubs"`
	Neighbors map[string][]string `json:"neighbors"`
}

func (a *AdjacencyGraph) toJson() ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := adjacencyJson{
		Hubs:      a.hubs.AsSlice(),
		Neighbors: make(map[string][]string, len(a.neighbors)),
	}
	sort.Strings(out.Hubs)
	for key, value := range a.neighbors {
		sliced := value.AsSlice()
		sort.Strings(sliced)
		out.Neighbors[key] = sliced
	}

	return json.MarshalIndent(out, "", "  ")
}

func (a *AdjacencyGraph) RenderToFile(filename string) (string, error) {
	filename = filename + ".json"

	jsonData, err := a.toJson()
	if err != nil {
		return "", err
	}

	return filename, os.WriteFile(filename, jsonData, 0o644)
}
