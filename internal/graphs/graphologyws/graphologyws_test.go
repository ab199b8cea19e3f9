package graphologyws

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psidex/protnet/internal/graph"
	"github.com/psidex/protnet/internal/hubs"
)

type fakeWriter struct {
	messages []map[string]interface{}
	fail     bool
}

func (f *fakeWriter) WriteJSON(v interface{}) error {
	if f.fail {
		return errors.New("closed")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	f.messages = append(f.messages, m)
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGraphologyWsStreams(t *testing.T) {
	w := &fakeWriter{}
	g := NewGraphologyWs(w, discard())

	a := &graph.Node{ID: "a", Attributes: graph.Attributes{"Degree": "1"}}
	b := &graph.Node{ID: "b", Attributes: graph.Attributes{"Degree": "1"}}
	g.AddNode(a, false)
	g.AddNode(a, false)
	g.AddNode(b, true)
	g.AddEdge(graph.Edge{Source: "a", Target: "b"})
	g.AddEdge(graph.Edge{Source: "b", Target: "a"})

	g.SetDepth(2)
	th := hubs.Threshold{Mean: 1, StdDev: 0, Value: 1}
	g.NotifySubset([]*graph.Node{b}, &th, hubs.ShowHubs)
	g.NotifySubset([]*graph.Node{a, b}, nil, 0)

	require.Len(t, w.messages, 5)
	assert.Equal(t, "node", w.messages[0]["type"])
	assert.Equal(t, "node", w.messages[1]["type"])
	assert.Equal(t, "edge", w.messages[2]["type"])

	subset := w.messages[3]["data"].(map[string]interface{})
	assert.Equal(t, "subset", w.messages[3]["type"])
	assert.Equal(t, []interface{}{"b"}, subset["keys"])
	assert.Equal(t, 1.0, subset["count"])
	assert.Equal(t, 2.0, subset["depth"])
	assert.Equal(t, "Show Hubs", subset["mode"])
	assert.Equal(t, 1.0, subset["threshold"].(map[string]interface{})["value"])

	reset := w.messages[4]["data"].(map[string]interface{})
	assert.Nil(t, reset["threshold"])
	assert.NotContains(t, reset, "mode")
}

func TestGraphologyWsWriteErrorsAreSwallowed(t *testing.T) {
	w := &fakeWriter{fail: true}
	g := NewGraphologyWs(w, discard())
	assert.NotPanics(t, func() {
		g.AddNode(&graph.Node{ID: "a"}, false)
	})
}

func TestGraphologyWsEdgeKeys(t *testing.T) {
	w := &fakeWriter{}
	g := NewGraphologyWs(w, discard())

	g.AddEdge(graph.Edge{ID: "2", Source: "a", Target: "b"})
	g.AddEdge(graph.Edge{Source: "b", Target: "c"})
	g.AddEdge(graph.Edge{Source: "c", Target: "a"})

	require.Len(t, w.messages, 3)
	var keys []interface{}
	for _, m := range w.messages {
		keys = append(keys, m["data"].(map[string]interface{})["key"])
	}
	assert.Equal(t, []interface{}{"2", "e2", "e3"}, keys)
}
