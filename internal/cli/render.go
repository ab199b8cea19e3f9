package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/psidex/protnet/internal/graph"
	"github.com/psidex/protnet/internal/graphs"
	"github.com/psidex/protnet/internal/graphs/graphology"
	"github.com/psidex/protnet/internal/graphs/vis"
	"github.com/psidex/protnet/internal/hubs"
)

// Formats accepted by render --format.
var renderFormats = []string{"echarts", "vis", "graphology", "json"}

func newProvider(format string) (graphs.CliGraphProvider, error) {
	switch format {
	case "echarts":
		return graphs.NewECharts(), nil
	case "vis":
		return vis.NewVis(), nil
	case "graphology":
		return graphology.NewGraphology(), nil
	case "json":
		return graphs.NewAdjacencyGraph(), nil
	default:
		return nil, fmt.Errorf("unknown graph provider: %s", format)
	}
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	var (
		format    string
		out       string
		mode      string
		recompute bool
		png       string
		settle    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "render <snapshot.json>",
		Short: "Render a snapshot to HTML or JSON",
		Long: `Render a snapshot with one of the graph providers, hubs highlighted:

  echarts     interactive HTML page (go-echarts)
  vis         HTML page replaying the network with vis.js
  graphology  graphology serialized JSON
  json        hub adjacency JSON

--png additionally takes a screenshot of HTML output with headless Chrome.`,
		Example: `  protnet render network.json --format vis --out network
  protnet render network.json --mode hide --png network.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			provider, err := newProvider(format)
			if err != nil {
				return err
			}
			snap, err := loadSnapshot(args[0], recompute)
			if err != nil {
				return err
			}

			var t *hubs.Threshold
			if th, err := hubs.ComputeThreshold(snap.Nodes); err == nil {
				t = &th
			} else {
				a.logger.Warn("no hub threshold, rendering without hubs", "error", err)
			}

			if mode != "" {
				m, err := parseModeFlag(mode)
				if err != nil {
					return err
				}
				if t == nil {
					return fmt.Errorf("cannot apply %s: %w", m, hubs.ErrInvalidInput)
				}
				kept, err := t.Select(snap.Nodes, m)
				if err != nil {
					return err
				}
				snap = graph.Subset(snap, kept)
			}

			graphs.Populate(provider, snap, t)
			written, err := provider.RenderToFile(out)
			if err != nil {
				return err
			}
			a.logger.Info("rendered", "format", format, "file", written,
				"nodes", len(snap.Nodes), "edges", len(snap.Edges))
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), written)

			if png == "" {
				return nil
			}
			if filepath.Ext(written) != ".html" {
				return fmt.Errorf("--png needs HTML output, %s wrote %s", format, written)
			}
			info, err := graphs.Screenshot(cmd.Context(), written, png, settle)
			if err != nil {
				return err
			}
			a.logger.Info("screenshot saved", "file", info.File,
				"loaded_bytes", info.LoadedBytes, "image_bytes", info.ImageBytes)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), info.File)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "echarts", "graph provider (echarts|vis|graphology|json)")
	cmd.Flags().StringVar(&out, "out", "protnet", "output file name without extension")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "render only the nodes kept by this hub mode")
	cmd.Flags().BoolVar(&recompute, "recompute-degrees", false, "count degrees from the snapshot's edges")
	cmd.Flags().StringVar(&png, "png", "", "also save a screenshot of the HTML output here")
	cmd.Flags().DurationVar(&settle, "settle", 3*time.Second, "how long the layout runs before the screenshot")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return renderFormats, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}
