package webserver

import (
	"github.com/psidex/protnet/internal/graph"
	"github.com/psidex/protnet/internal/lib"
	"github.com/psidex/protnet/internal/viewtree"
)

// SessionConfig is the first message a client sends after connecting.
type SessionConfig struct {
	Graph     *graph.Snapshot  `json:"graph" validate:"required"`
	SpeciesID string           `json:"speciesId" validate:"omitempty,numeric"`
	Trees     []*viewtree.Node `json:"trees"`
	// RecomputeDegrees replaces the Degree attributes with degrees counted from the
	// snapshot's edges.
	RecomputeDegrees  bool         `json:"recomputeDegrees"`
	EnrichmentTimeout lib.Duration `json:"enrichmentTimeout"`
}

// clientMessage is every message after the SessionConfig. Which fields matter depends
// on Type.
type clientMessage struct {
	Type     string  `json:"type" validate:"required"`
	Mode     string  `json:"mode"`
	Category *string `json:"category"`
	Search   *string `json:"search"`
	Index    string  `json:"index"`
}

// Message types sent by the client.
const (
	msgHubs   = "hubs"
	msgRevert = "revert"
	msgReset  = "reset"
	msgTerms  = "terms"
	msgExport = "export"
	msgSelect = "select"
)

type serverMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type errorData struct {
	Message string `json:"message"`
	Request string `json:"request,omitempty"`
}

type termsData struct {
	Terms    interface{} `json:"terms"`
	Count    int         `json:"count"`
	Category string      `json:"category"`
	Depth    int         `json:"depth"`
}

type csvData struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}
