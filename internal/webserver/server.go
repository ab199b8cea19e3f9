package webserver

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"golang.org/x/net/netutil"

	"github.com/psidex/protnet/internal/enrichment"
	"github.com/psidex/protnet/internal/metrics"
)

// Enricher fetches functional enrichment terms, see enrichment.Client.
type Enricher interface {
	FetchTerms(ctx context.Context, proteins []string, speciesID string) ([]enrichment.Term, error)
}

type Options struct {
	StaticDir         string
	EnrichmentTimeout time.Duration
	MaxMessageBytes   int64
	MaxConnections    int
}

type Server struct {
	logger   *slog.Logger
	metrics  *metrics.Registry
	enricher Enricher
	opts     Options
	upgrader websocket.Upgrader
	validate *validator.Validate
}

// NewServer creates a Server. enricher may be nil, in which case sessions have empty
// term lists.
func NewServer(logger *slog.Logger, reg *metrics.Registry, enricher Enricher, opts Options) *Server {
	if opts.EnrichmentTimeout <= 0 {
		opts.EnrichmentTimeout = 30 * time.Second
	}
	s := &Server{
		logger:   logger,
		metrics:  reg,
		enricher: enricher,
		opts:     opts,
		validate: validator.New(),
	}
	s.upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	return s
}

// Handler serves static files on /, sessions on /ws and metrics on /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.opts.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.opts.StaticDir)))
	}
	mux.HandleFunc("/ws", s.Session)
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

// Serve accepts at most MaxConnections connections on l at once.
func (s *Server) Serve(l net.Listener) error {
	if s.opts.MaxConnections > 0 {
		l = netutil.LimitListener(l, s.opts.MaxConnections)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.Serve(l)
}

func (s *Server) ListenAndServe(address string) error {
	l, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}
	s.logger.Info("listening", "address", l.Addr().String())
	return s.Serve(l)
}
