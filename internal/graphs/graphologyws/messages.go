package graphologyws

import (
	"github.com/psidex/protnet/internal/graphs/graphology"
	"github.com/psidex/protnet/internal/hubs"
)

// Message is the envelope of everything sent to the frontend.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type edgeData struct {
	Key    string `json:"key"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// SubsetData lists the keys of the nodes in the active subset.
type SubsetData struct {
	Keys      []string        `json:"keys"`
	Count     int             `json:"count"`
	Depth     int             `json:"depth"`
	Threshold *hubs.Threshold `json:"threshold"`
	Mode      string          `json:"mode,omitempty"`
}

func nodeMessage(n graphology.Node) Message {
	return Message{Type: "node", Data: n}
}

func edgeMessage(e edgeData) Message {
	return Message{Type: "edge", Data: e}
}

func subsetMessage(s SubsetData) Message {
	return Message{Type: "subset", Data: s}
}
