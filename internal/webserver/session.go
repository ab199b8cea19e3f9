package webserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/psidex/protnet/internal/enrichment"
	"github.com/psidex/protnet/internal/graph"
	"github.com/psidex/protnet/internal/graphs"
	"github.com/psidex/protnet/internal/graphs/graphologyws"
	"github.com/psidex/protnet/internal/hubs"
	"github.com/psidex/protnet/internal/lib"
	"github.com/psidex/protnet/internal/session"
	"github.com/psidex/protnet/internal/viewtree"
)

// Session upgrades the request to a websocket and serves one client until it
// disconnects. The first message must be a SessionConfig.
func (s *Server) Session(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer c.Close()

	if s.opts.MaxMessageBytes > 0 {
		c.SetReadLimit(s.opts.MaxMessageBytes)
	}

	ws := lib.NewThreadSafeWebSocket(c)
	logger := s.logger.With("session", uuid.NewString(), "remote", r.RemoteAddr)

	s.metrics.SessionsActive.Inc()
	defer s.metrics.SessionsActive.Dec()

	_, msg, err := ws.ReadMessage()
	if err != nil {
		logger.Warn("ws cfg read failed", "error", err)
		return
	}

	cfg := &SessionConfig{}
	if err = json.Unmarshal(msg, cfg); err != nil {
		logger.Warn("ws cfg unmarshal failed", "error", err)
		sendError(ws, logger, "config", fmt.Errorf("invalid session config: %w", err))
		return
	}
	if err = s.validate.Struct(cfg); err == nil {
		err = cfg.Graph.Validate()
	}
	if err != nil {
		logger.Warn("ws cfg invalid", "error", err)
		sendError(ws, logger, "config", fmt.Errorf("invalid session config: %w", err))
		return
	}
	if cfg.RecomputeDegrees {
		graph.ComputeDegrees(cfg.Graph)
	}

	logger.Info("session started", "nodes", len(cfg.Graph.Nodes), "edges", len(cfg.Graph.Edges))

	cl := &client{
		ctx:      r.Context(),
		server:   s,
		logger:   logger,
		ws:       ws,
		cfg:      cfg,
		state:    session.NewState(cfg.Graph),
		terms:    enrichment.NewBrowser(),
		provider: graphologyws.NewGraphologyWs(ws, logger),
	}
	cl.start()

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("ws read failed", "error", err)
			}
			logger.Info("session ended")
			return
		}
		cl.handle(msg)
	}
}

// client is the server side of one websocket session.
type client struct {
	ctx      context.Context
	server   *Server
	logger   *slog.Logger
	ws       lib.ThreadSafeWebSocket
	cfg      *SessionConfig
	state    *session.State
	terms    *enrichment.Browser
	provider *graphologyws.GraphologyWs
}

func (cl *client) start() {
	root := cl.cfg.Graph

	var t *hubs.Threshold
	if th, err := hubs.ComputeThreshold(root.Nodes); err == nil {
		t = &th
	} else {
		cl.logger.Debug("snapshot has no hub threshold", "error", err)
	}

	graphs.Populate(cl.provider, root, t)
	cl.state.Subscribe(cl.onChange)
	cl.state.Announce()
}

// onChange keeps the frontend and the term history in step with the active subset.
func (cl *client) onChange(c session.Change) {
	cl.provider.SetDepth(c.Depth)
	cl.provider.NotifySubset(c.Subset.Nodes, c.Threshold, c.Mode)

	switch c.Kind {
	case session.Loaded, session.Classified:
		cl.terms.Push(cl.fetchTerms(c.Subset.Nodes))
	case session.Reverted:
		// Both histories grow and shrink together, so this can't run out.
		_ = cl.terms.Revert()
	case session.Reset:
		cl.terms.Reset()
	}
	cl.sendTerms()
}

func (cl *client) speciesID(nodes []*graph.Node) string {
	if cl.cfg.SpeciesID != "" {
		return cl.cfg.SpeciesID
	}
	return nodes[0].Species
}

// fetchTerms returns no terms if enrichment is disabled or fails, the failure is
// reported to the client.
func (cl *client) fetchTerms(nodes []*graph.Node) []enrichment.Term {
	if cl.server.enricher == nil || len(nodes) == 0 {
		return nil
	}

	timeout := cl.cfg.EnrichmentTimeout.OrDefault(cl.server.opts.EnrichmentTimeout)
	ctx, cancel := context.WithTimeout(cl.ctx, timeout)
	defer cancel()

	start := time.Now()
	terms, err := cl.server.enricher.FetchTerms(ctx, graph.NodeIDs(nodes), cl.speciesID(nodes))
	cl.server.metrics.ObserveEnrichment(start, err)
	if err != nil {
		cl.logger.Warn("enrichment failed", "proteins", len(nodes), "error", err)
		cl.sendError(msgTerms, fmt.Errorf("enrichment failed: %w", err))
		return nil
	}
	cl.logger.Debug("enrichment done", "proteins", len(nodes), "terms", len(terms), "took", time.Since(start))
	return terms
}

func (cl *client) handle(raw []byte) {
	var m clientMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		cl.sendError("", fmt.Errorf("invalid message: %w", err))
		return
	}
	if err := cl.server.validate.Struct(&m); err != nil {
		cl.sendError("", fmt.Errorf("invalid message: %w", err))
		return
	}

	err := cl.dispatch(m)
	cl.server.metrics.ObserveMessage(messageLabel(m.Type), err)
	if err != nil {
		cl.logger.Debug("message failed", "type", m.Type, "error", err)
		cl.sendError(m.Type, err)
	}
}

// messageLabel keeps the metric label set bounded whatever clients send.
func messageLabel(msgType string) string {
	switch msgType {
	case msgHubs, msgRevert, msgReset, msgTerms, msgExport, msgSelect:
		return msgType
	}
	return "unknown"
}

func (cl *client) dispatch(m clientMessage) error {
	switch m.Type {
	case msgHubs:
		return cl.classify(m.Mode)
	case msgRevert:
		_, err := cl.state.Revert()
		return err
	case msgReset:
		cl.state.Reset()
		return nil
	case msgTerms:
		return cl.filterTerms(m.Category, m.Search)
	case msgExport:
		return cl.exportTerms()
	case msgSelect:
		return cl.selectTreeNode(m.Index)
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
}

func (cl *client) classify(rawMode string) error {
	mode, err := hubs.ParseMode(rawMode)
	if err != nil {
		cl.server.metrics.ObserveClassification("invalid", 0, 0, err)
		return err
	}

	c, err := cl.state.Apply(mode)
	if err != nil {
		cl.server.metrics.ObserveClassification(mode.String(), 0, 0, err)
		return err
	}
	cl.server.metrics.ObserveClassification(mode.String(), len(c.Subset.Nodes), c.Threshold.Value, nil)
	cl.logger.Info("classified", "mode", mode, "threshold", c.Threshold.Value,
		"kept", len(c.Subset.Nodes), "depth", c.Depth)
	return nil
}

func (cl *client) filterTerms(category, search *string) error {
	if category != nil {
		if err := cl.terms.Filter(*category); err != nil {
			return err
		}
	}
	if search != nil {
		if err := cl.terms.Search(*search); err != nil {
			return err
		}
	}
	cl.sendTerms()
	return nil
}

func (cl *client) exportTerms() error {
	var buf bytes.Buffer
	if err := enrichment.WriteCSV(&buf, cl.terms.Terms()); err != nil {
		return err
	}
	cl.send("csv", csvData{Filename: "Terms.csv", Content: buf.String()})
	return nil
}

func (cl *client) selectTreeNode(rawIndex string) error {
	if len(cl.cfg.Trees) == 0 {
		return errors.New("session has no trees")
	}
	index, err := viewtree.ParseIndex(rawIndex)
	if err != nil {
		return err
	}
	node, err := viewtree.Find(cl.cfg.Trees, index)
	if err != nil {
		return err
	}
	cl.send("treenode", node)
	return nil
}

func (cl *client) sendTerms() {
	terms := cl.terms.Terms()
	cl.send(msgTerms, termsData{
		Terms:    terms,
		Count:    len(terms),
		Category: cl.terms.Category(),
		Depth:    cl.terms.Depth(),
	})
}

func (cl *client) send(msgType string, data interface{}) {
	if err := cl.ws.WriteJSON(serverMessage{Type: msgType, Data: data}); err != nil {
		cl.logger.Warn("ws write failed", "type", msgType, "error", err)
	}
}

func (cl *client) sendError(request string, err error) {
	sendError(cl.ws, cl.logger, request, err)
}

func sendError(ws lib.ThreadSafeWebSocket, logger *slog.Logger, request string, err error) {
	msg := serverMessage{Type: "error", Data: errorData{Message: err.Error(), Request: request}}
	if werr := ws.WriteJSON(msg); werr != nil {
		logger.Warn("ws write failed", "type", "error", "error", werr)
	}
}
