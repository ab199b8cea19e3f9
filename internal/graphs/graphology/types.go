package graphology

type NodeAttributes struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Size   float64 `json:"size"`
	Label  string  `json:"label"`
	Color  string  `json:"color"`
	Degree int     `json:"degree"`
	Hub    bool    `json:"hub"`
}

type Node struct {
	Key        string         `json:"key"`
	Attributes NodeAttributes `json:"attributes"`
}

type EdgeAttributes struct {
	Size  float64 `json:"size"`
	Color string  `json:"color,omitempty"`
}

type Edge struct {
	Key        string         `json:"key"`
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Attributes EdgeAttributes `json:"attributes"`
}

// SerializedGraph is graphology's import/export format.
type SerializedGraph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}
