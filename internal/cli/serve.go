package cli

import (
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/psidex/protnet/internal/config"
	"github.com/psidex/protnet/internal/enrichment"
	"github.com/psidex/protnet/internal/metrics"
	"github.com/psidex/protnet/internal/webserver"
)

// NewServer builds the websocket server described by cfg.
func NewServer(cfg *config.Config, logger *slog.Logger) (*webserver.Server, error) {
	var enricher webserver.Enricher
	if cfg.EnrichmentURL != "" {
		client, err := enrichment.NewClient(cfg.EnrichmentURL, &http.Client{Timeout: cfg.EnrichmentTimeout})
		if err != nil {
			return nil, err
		}
		enricher = client
	} else {
		logger.Warn("no enrichment backend configured, sessions will have no terms")
	}

	return webserver.NewServer(logger, metrics.NewRegistry(), enricher, webserver.Options{
		StaticDir:         cfg.StaticDir,
		EnrichmentTimeout: cfg.EnrichmentTimeout,
		MaxMessageBytes:   cfg.MaxMessageBytes,
		MaxConnections:    cfg.MaxConnections,
	}), nil
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the network explorer",
		Long: `Serve static files on /, explorer sessions on /ws and Prometheus metrics on
/metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			s, err := NewServer(a.cfg, a.logger)
			if err != nil {
				return err
			}
			return s.ListenAndServe(a.cfg.Address)
		},
	}
}
