package graph

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// DegreeKey is the attribute the layout backend stores a node's degree under.
const DegreeKey = "Degree"

// Attributes holds node attributes as text. The layout backend is not consistent
// about quoting, so numbers and bools are accepted and stored in their text form.
type Attributes map[string]string

func (a *Attributes) UnmarshalJSON(b []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	out := make(Attributes, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			out[key] = ""
		case string:
			out[key] = v
		case float64:
			out[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			out[key] = strconv.FormatBool(v)
		default:
			return fmt.Errorf("attribute %q: unsupported value %#v", key, value)
		}
	}

	*a = out
	return nil
}

type Node struct {
	ID         string     `json:"id"`
	Label      string     `json:"label,omitempty"`
	Species    string     `json:"species,omitempty"`
	Color      string     `json:"color,omitempty"`
	X          float64    `json:"x,omitempty"`
	Y          float64    `json:"y,omitempty"`
	Size       float64    `json:"size,omitempty"`
	Attributes Attributes `json:"attributes"`
}

// Degree parses the node's "Degree" attribute as a base-10 integer.
func (n *Node) Degree() (int, error) {
	raw, ok := n.Attributes[DegreeKey]
	if !ok {
		return 0, fmt.Errorf("node %q has no %s attribute", n.ID, DegreeKey)
	}
	d, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("node %q has non-numeric %s %q", n.ID, DegreeKey, raw)
	}
	if d < 0 {
		return 0, fmt.Errorf("node %q has negative %s %d", n.ID, DegreeKey, d)
	}
	return d, nil
}

// DisplayName is the label if one is set, otherwise the ID.
func (n *Node) DisplayName() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

type Edge struct {
	ID     string  `json:"id,omitempty"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Score  float64 `json:"score,omitempty"`
	Color  string  `json:"color,omitempty"`
}

// Snapshot is the graph currently shown to the user. Subgraph lists the IDs of the
// nodes belonging to the main connected component.
type Snapshot struct {
	Nodes    []*Node  `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Subgraph []string `json:"subgraph,omitempty"`
}
