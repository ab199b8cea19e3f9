package graphs

import (
	"os"
	"strconv"
	"sync"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/psidex/protnet/internal/graph"
	"github.com/psidex/protnet/internal/lib"
)

const (
	hubColor    = "#d62728"
	nonHubColor = "#1f77b4"
)

// ECharts defines a CliGraphProvider that renders a go-echarts HTML file.
type ECharts struct {
	mu    *sync.Mutex
	ids   lib.Set[string]
	edges lib.Set[string]
	nodes []opts.GraphNode
	links []opts.GraphLink
	// echarts links refer to node names, so remember each node's name.
	names map[string]string
	Title string
}

var _ CliGraphProvider = (*ECharts)(nil)

func NewECharts() *ECharts {
	return &ECharts{
		mu:    &sync.Mutex{},
		ids:   lib.NewSet[string](),
		edges: lib.NewSet[string](),
		nodes: []opts.GraphNode{},
		links: []opts.GraphLink{},
		names: make(map[string]string),
		Title: "protnet",
	}
}

// nodeSize grows with degree but stays readable for large hubs.
func nodeSize(n *graph.Node) int {
	d, err := n.Degree()
	if err != nil {
		return 8
	}
	size := 8 + d
	if size > 40 {
		size = 40
	}
	return size
}

func (e *ECharts) AddNode(n *graph.Node, hub bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ids.Contains(n.ID) {
		return
	}
	e.ids.Add(n.ID)

	// echarts requires unique names, fall back to the ID on a clash.
	name := n.DisplayName()
	for _, existing := range e.names {
		if existing == name {
			name = n.ID
			break
		}
	}
	e.names[n.ID] = name

	color := nonHubColor
	if hub {
		color = hubColor
	}
	node := opts.GraphNode{
		Name:       name,
		SymbolSize: nodeSize(n),
		ItemStyle:  &opts.ItemStyle{Color: color},
	}
	if d, err := n.Degree(); err == nil {
		node.Value = float32(d)
	}
	e.nodes = append(e.nodes, node)
}

func (e *ECharts) AddEdge(edge graph.Edge) {
	e.mu.Lock()
	defer e.mu.Unlock()

	from, okFrom := e.names[edge.Source]
	to, okTo := e.names[edge.Target]
	if !okFrom || !okTo || edge.Source == edge.Target {
		return
	}

	edgeStr := edge.Source + "\t" + edge.Target
	inverseEdgeStr := edge.Target + "\t" + edge.Source
	if e.edges.Contains(edgeStr) || e.edges.Contains(inverseEdgeStr) {
		return
	}
	e.edges.Add(edgeStr)

	e.links = append(e.links, opts.GraphLink{
		Source: from,
		Target: to,
		Value:  float32(edge.Score),
	})
}

func (e *ECharts) RenderToFile(filename string) (string, error) {
	filename = filename + ".html"

	e.mu.Lock()
	defer e.mu.Unlock()

	page := components.NewPage()
	page.AddCharts(graphBase(e.Title, e.nodes, e.links))

	f, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return filename, page.Render(f)
}

func graphBase(title string, nodes []opts.GraphNode, links []opts.GraphLink) *charts.Graph {
	chart := charts.NewGraph()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Height:    "100vh",
			Width:     "100vw",
		}),
		charts.WithTitleOpts(opts.Title{
			Subtitle: strconv.Itoa(len(nodes)) + " nodes, " + strconv.Itoa(len(links)) + " edges",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)
	chart.AddSeries(
		"graph",
		nodes,
		links,
		charts.WithGraphChartOpts(
			opts.GraphChart{
				Draggable: opts.Bool(true),
				Roam:      opts.Bool(true),
				Force:     &opts.GraphForce{Repulsion: 400},
			},
		),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Color:    "black",
			Position: "top",
		}),
	)
	return chart
}
