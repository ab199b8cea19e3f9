// Package cli provides the protnet command line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/psidex/protnet/internal/config"
	"github.com/psidex/protnet/internal/lib"
)

// Version is set at build time.
var Version = "0.1.0"

type appKey struct{}

// app is what every subcommand gets from the root command.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// appFrom returns the app set up by the root command, or one built from defaults
// when a subcommand runs on its own.
func appFrom(cmd *cobra.Command) (*app, error) {
	if ctx := cmd.Context(); ctx != nil {
		if a, ok := ctx.Value(appKey{}).(*app); ok {
			return a, nil
		}
	}
	cfg, err := config.Load("", nil)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: lib.NiceLogger(cmd.ErrOrStderr(), slog.LevelInfo)}, nil
}

// NewRootCmd creates the protnet command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "protnet",
		Short: "protnet - protein interaction network explorer",
		Long: `protnet classifies hub proteins in interaction network snapshots, renders
snapshots to HTML or JSON, queries functional enrichment terms and serves the
interactive explorer over a websocket.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logger, err := lib.LoggerFromLevel(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, appKey{}, &app{cfg: cfg, logger: logger}))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./protnet.yaml)")
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(NewHubsCommand())
	rootCmd.AddCommand(NewRenderCommand())
	rootCmd.AddCommand(NewTermsCommand())
	rootCmd.AddCommand(NewTreeCommand())
	rootCmd.AddCommand(NewServeCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
