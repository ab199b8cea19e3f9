package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/psidex/protnet/internal/graph"
	"github.com/psidex/protnet/internal/hubs"
)

// parseModeFlag accepts the mode labels and the short forms "show" and "hide".
func parseModeFlag(s string) (hubs.Mode, error) {
	switch strings.ToLower(s) {
	case "show":
		return hubs.ShowHubs, nil
	case "hide":
		return hubs.HideHubs, nil
	}
	return hubs.ParseMode(s)
}

func loadSnapshot(path string, recompute bool) (*graph.Snapshot, error) {
	snap, err := graph.LoadSnapshot(path)
	if err != nil {
		return nil, err
	}
	if recompute {
		graph.ComputeDegrees(snap)
	}
	return snap, nil
}

type hubsResult struct {
	Threshold hubs.Threshold `json:"threshold"`
	Mode      *hubs.Mode     `json:"mode,omitempty"`
	Nodes     []string       `json:"nodes,omitempty"`
	Hubs      []string       `json:"hubs,omitempty"`
	Others    []string       `json:"others,omitempty"`
}

// NewHubsCommand creates the hubs command.
func NewHubsCommand() *cobra.Command {
	var (
		mode      string
		format    string
		recompute bool
		writeTo   string
	)

	cmd := &cobra.Command{
		Use:   "hubs <snapshot.json>",
		Short: "Classify the hub proteins of a snapshot",
		Long: `Compute the hub degree threshold of a snapshot, ceil(mean + sample standard
deviation) of the node degrees, and list which nodes are hubs.

With --mode only the nodes kept by that mode are listed, and --write saves them
as a new snapshot.`,
		Example: `  protnet hubs network.json
  protnet hubs network.json --mode show --output json
  protnet hubs network.json --mode "Hide Hubs" --write without-hubs.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			snap, err := loadSnapshot(args[0], recompute)
			if err != nil {
				return err
			}

			if mode == "" {
				hubNodes, others, t, err := hubs.Split(snap.Nodes)
				if err != nil {
					return err
				}
				a.logger.Debug("split snapshot", "hubs", len(hubNodes), "others", len(others), "threshold", t.Value)
				res := hubsResult{Threshold: t, Hubs: graph.NodeIDs(hubNodes), Others: graph.NodeIDs(others)}
				if format == "json" {
					return writeJSON(cmd.OutOrStdout(), res)
				}
				renderThreshold(cmd.OutOrStdout(), t)
				renderNodes(cmd.OutOrStdout(), snap.Nodes, &t)
				return nil
			}

			m, err := parseModeFlag(mode)
			if err != nil {
				return err
			}
			kept, t, err := hubs.ClassifyWithThreshold(snap.Nodes, m)
			if err != nil {
				return err
			}
			a.logger.Debug("classified snapshot", "mode", m, "kept", len(kept), "threshold", t.Value)

			if writeTo != "" {
				if err := writeSnapshotFile(writeTo, graph.Subset(snap, kept)); err != nil {
					return err
				}
				a.logger.Info("wrote subset", "file", writeTo, "nodes", len(kept))
			}

			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), hubsResult{Threshold: t, Mode: &m, Nodes: graph.NodeIDs(kept)})
			}
			renderThreshold(cmd.OutOrStdout(), t)
			renderNodes(cmd.OutOrStdout(), kept, &t)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", `"Show Hubs" (show) or "Hide Hubs" (hide)`)
	cmd.Flags().StringVarP(&format, "output", "o", "table", "output format (table|json)")
	cmd.Flags().BoolVar(&recompute, "recompute-degrees", false, "count degrees from the snapshot's edges")
	cmd.Flags().StringVarP(&writeTo, "write", "w", "", "write the kept nodes as a snapshot to this file")

	_ = cmd.RegisterFlagCompletionFunc("mode", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"show", "hide"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func writeSnapshotFile(path string, snap *graph.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := graph.WriteSnapshot(f, snap); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderThreshold(w io.Writer, t hubs.Threshold) {
	_, _ = fmt.Fprintf(w, "mean %.3f, sd %.3f, threshold %d\n", t.Mean, t.StdDev, t.Value)
}

func renderNodes(w io.Writer, nodes []*graph.Node, t *hubs.Threshold) {
	if len(nodes) == 0 {
		_, _ = fmt.Fprintln(w, "(0 nodes)")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"ID", "Name", "Degree", "Hub"})
	for _, n := range nodes {
		hub := ""
		d, err := n.Degree()
		if err == nil && t.IsHub(d) {
			hub = "yes"
		}
		tw.AppendRow(table.Row{n.ID, n.DisplayName(), d, hub})
	}
	tw.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d nodes", len(nodes))})
	tw.Render()
}
