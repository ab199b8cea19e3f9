package webserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psidex/protnet/internal/enrichment"
	"github.com/psidex/protnet/internal/metrics"
)

// fakeEnricher returns one term per protein so tests can tell subsets apart by count.
type fakeEnricher struct {
	mu    sync.Mutex
	calls [][]string
	fail  bool
}

func (f *fakeEnricher) FetchTerms(ctx context.Context, proteins []string, speciesID string) ([]enrichment.Term, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, proteins)
	if f.fail {
		return nil, errors.New("backend down")
	}
	terms := make([]enrichment.Term, len(proteins))
	for i, p := range proteins {
		category := "Process"
		if i%2 == 1 {
			category = "KEGG"
		}
		terms[i] = enrichment.Term{
			ID:       fmt.Sprintf("T%d", i),
			Name:     p + " pathway",
			Category: category,
			FDRRate:  float64(len(proteins)-i) / 100,
			Proteins: []string{p},
		}
	}
	return terms, nil
}

const snapshotJSON = `{
	"nodes": [
		{"id": "n1", "label": "A", "species": "9606", "attributes": {"Degree": "1"}},
		{"id": "n2", "label": "B", "species": "9606", "attributes": {"Degree": "1"}},
		{"id": "n3", "label": "C", "species": "9606", "attributes": {"Degree": "1"}},
		{"id": "n4", "label": "D", "species": "9606", "attributes": {"Degree": "1"}},
		{"id": "n5", "label": "E", "species": "9606", "attributes": {"Degree": 9}}
	],
	"edges": [
		{"source": "n5", "target": "n1"},
		{"source": "n5", "target": "n2"},
		{"source": "n5", "target": "n3"},
		{"source": "n5", "target": "n4"}
	]
}`

const treesJSON = `[
	{"name": "root", "index": [1], "children": [
		{"name": "left", "index": [1, 1]},
		{"name": "right", "index": [1, 2]}
	]}
]`

type testServer struct {
	http     *httptest.Server
	metrics  *metrics.Registry
	enricher *fakeEnricher
}

func newTestServer(t *testing.T, enricher *fakeEnricher) *testServer {
	t.Helper()
	reg := metrics.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var e Enricher
	if enricher != nil {
		e = enricher
	}
	s := NewServer(logger, reg, e, Options{MaxMessageBytes: 1 << 20})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &testServer{http: ts, metrics: reg, enricher: enricher}
}

func (ts *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/ws"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

type received struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// readUntil reads messages until one of type msgType arrives and returns it.
func readUntil(t *testing.T, c *websocket.Conn, msgType string) received {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var m received
		require.NoError(t, c.ReadJSON(&m), "waiting for %q", msgType)
		if m.Type == msgType {
			return m
		}
	}
}

func startSession(t *testing.T, c *websocket.Conn) {
	t.Helper()
	cfg := fmt.Sprintf(`{"graph": %s, "trees": %s, "enrichmentTimeout": "2s"}`, snapshotJSON, treesJSON)
	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(cfg)))
}

func send(t *testing.T, c *websocket.Conn, msg string) {
	t.Helper()
	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(msg)))
}

func keys(m received) []interface{} {
	return m.Data["keys"].([]interface{})
}

func TestSessionClassifyRevertReset(t *testing.T) {
	ts := newTestServer(t, &fakeEnricher{})
	c := ts.dial(t)
	startSession(t, c)

	root := readUntil(t, c, "subset")
	assert.Len(t, keys(root), 5)
	assert.Equal(t, 1.0, root.Data["depth"])
	assert.Nil(t, root.Data["threshold"])

	terms := readUntil(t, c, "terms")
	assert.Equal(t, 5.0, terms.Data["count"])

	send(t, c, `{"type": "hubs", "mode": "Show Hubs"}`)
	shown := readUntil(t, c, "subset")
	assert.Equal(t, []interface{}{"n5"}, keys(shown))
	assert.Equal(t, 2.0, shown.Data["depth"])
	assert.Equal(t, "Show Hubs", shown.Data["mode"])
	assert.Equal(t, 7.0, shown.Data["threshold"].(map[string]interface{})["value"])
	terms = readUntil(t, c, "terms")
	assert.Equal(t, 1.0, terms.Data["count"])
	assert.Equal(t, 2.0, terms.Data["depth"])

	send(t, c, `{"type": "revert"}`)
	reverted := readUntil(t, c, "subset")
	assert.Len(t, keys(reverted), 5)
	terms = readUntil(t, c, "terms")
	assert.Equal(t, 5.0, terms.Data["count"])
	assert.Equal(t, 1.0, terms.Data["depth"])

	send(t, c, `{"type": "hubs", "mode": "Hide Hubs"}`)
	hidden := readUntil(t, c, "subset")
	assert.Equal(t, []interface{}{"n1", "n2", "n3", "n4"}, keys(hidden))
	readUntil(t, c, "terms")

	send(t, c, `{"type": "reset"}`)
	reset := readUntil(t, c, "subset")
	assert.Len(t, keys(reset), 5)
	assert.Equal(t, 1.0, reset.Data["depth"])
	terms = readUntil(t, c, "terms")
	assert.Equal(t, 5.0, terms.Data["count"])

	ts.enricher.mu.Lock()
	assert.Len(t, ts.enricher.calls, 3)
	ts.enricher.mu.Unlock()
}

func TestSessionErrorsKeepSessionAlive(t *testing.T) {
	ts := newTestServer(t, nil)
	c := ts.dial(t)
	startSession(t, c)
	readUntil(t, c, "terms")

	send(t, c, `{"type": "revert"}`)
	e := readUntil(t, c, "error")
	assert.Equal(t, "revert", e.Data["request"])

	send(t, c, `{"type": "hubs", "mode": "Sometimes Hubs"}`)
	e = readUntil(t, c, "error")
	assert.Contains(t, e.Data["message"], "mode")

	send(t, c, `{"type": "dance"}`)
	e = readUntil(t, c, "error")
	assert.Contains(t, e.Data["message"], "unknown message type")

	send(t, c, `not json`)
	readUntil(t, c, "error")

	// Show Hubs leaves one node, which can't be classified again.
	send(t, c, `{"type": "hubs", "mode": "Show Hubs"}`)
	readUntil(t, c, "subset")
	send(t, c, `{"type": "hubs", "mode": "Show Hubs"}`)
	e = readUntil(t, c, "error")
	assert.Equal(t, "hubs", e.Data["request"])

	send(t, c, `{"type": "reset"}`)
	reset := readUntil(t, c, "subset")
	assert.Len(t, keys(reset), 5)

	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.SessionMessagesTotal.WithLabelValues("unknown", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.ClassificationsTotal.WithLabelValues("invalid", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.ClassificationsTotal.WithLabelValues("Show Hubs", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.ClassificationsTotal.WithLabelValues("Show Hubs", "error")))
}

func TestSessionTermsFilterAndExport(t *testing.T) {
	ts := newTestServer(t, &fakeEnricher{})
	c := ts.dial(t)
	startSession(t, c)
	readUntil(t, c, "terms")

	send(t, c, `{"type": "terms", "category": "KEGG"}`)
	terms := readUntil(t, c, "terms")
	assert.Equal(t, 2.0, terms.Data["count"])
	assert.Equal(t, "KEGG", terms.Data["category"])

	send(t, c, `{"type": "terms", "search": "^N2 "}`)
	terms = readUntil(t, c, "terms")
	assert.Equal(t, 1.0, terms.Data["count"])

	send(t, c, `{"type": "export"}`)
	csv := readUntil(t, c, "csv")
	assert.Equal(t, "Terms.csv", csv.Data["filename"])
	content := csv.Data["content"].(string)
	assert.True(t, strings.HasPrefix(content, "category,fdr_rate,name,proteins\n"))
	assert.Contains(t, content, "n2 pathway")
	assert.NotContains(t, content, "n4 pathway")

	send(t, c, `{"type": "terms", "category": "Nonsense"}`)
	e := readUntil(t, c, "error")
	assert.Equal(t, "terms", e.Data["request"])

	send(t, c, `{"type": "terms", "category": "RESET", "search": ""}`)
	terms = readUntil(t, c, "terms")
	assert.Equal(t, 5.0, terms.Data["count"])
}

func TestSessionEnrichmentFailure(t *testing.T) {
	ts := newTestServer(t, &fakeEnricher{fail: true})
	c := ts.dial(t)
	startSession(t, c)

	e := readUntil(t, c, "error")
	assert.Equal(t, "terms", e.Data["request"])
	assert.Contains(t, e.Data["message"], "backend down")

	terms := readUntil(t, c, "terms")
	assert.Equal(t, 0.0, terms.Data["count"])
	assert.Equal(t, 1.0, terms.Data["depth"])
}

func TestSessionSelectTreeNode(t *testing.T) {
	ts := newTestServer(t, nil)
	c := ts.dial(t)
	startSession(t, c)
	readUntil(t, c, "terms")

	send(t, c, `{"type": "select", "index": "1.2"}`)
	node := readUntil(t, c, "treenode")
	assert.Equal(t, "right", node.Data["name"])

	send(t, c, `{"type": "select", "index": "4.4"}`)
	e := readUntil(t, c, "error")
	assert.Equal(t, "select", e.Data["request"])
}

func TestSessionRejectsBadConfig(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, cfg := range []string{
		`{"speciesId": "9606"}`,
		`{"graph": {"nodes": []}, "speciesId": "human"}`,
		`[1, 2]`,
		`{"graph": {"nodes": [{"id": "a", "attributes": {"Degree": "1"}}, null]}}`,
		`{"graph": {"nodes": [null, {"id": "a"}]}, "recomputeDegrees": true}`,
	} {
		c := ts.dial(t)
		send(t, c, cfg)
		e := readUntil(t, c, "error")
		assert.Equal(t, "config", e.Data["request"], cfg)
		assert.Contains(t, e.Data["message"], "invalid session config", cfg)

		require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, _, err := c.ReadMessage()
		assert.Error(t, err, "session should close after a bad config")
	}
}

func TestHandlerServesMetricsAndStatic(t *testing.T) {
	dir := t.TempDir()
	reg := metrics.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>protnet</html>"), 0o644))

	s := NewServer(logger, reg, nil, Options{StaticDir: dir})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/index.html")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "protnet")

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "protnet_sessions_active")
}
