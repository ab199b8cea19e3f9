package vis

type nodeData struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
	Value int    `json:"value,omitempty"`
	Title string `json:"title,omitempty"`
}

type node struct {
	Type string   `json:"type"` // always "node"
	Data nodeData `json:"data"`
}

func newNode(data nodeData) node {
	return node{Type: "node", Data: data}
}

type edgeData struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type edge struct {
	Type string   `json:"type"` // always "edge"
	Data edgeData `json:"data"`
}

func newEdge(data edgeData) edge {
	return edge{Type: "edge", Data: data}
}
