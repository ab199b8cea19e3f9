package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/psidex/protnet/internal/enrichment"
	"github.com/psidex/protnet/internal/graph"
	"github.com/psidex/protnet/internal/hubs"
)

// NewTermsCommand creates the terms command.
func NewTermsCommand() *cobra.Command {
	var (
		species   string
		category  string
		search    string
		csvFile   string
		mode      string
		recompute bool
	)

	cmd := &cobra.Command{
		Use:   "terms <snapshot.json>",
		Short: "Fetch functional enrichment terms for a snapshot",
		Long: `Ask the enrichment backend (--enrichment-url) for the functional enrichment
terms of the proteins in a snapshot, or of the subset kept by --mode. Terms are
sorted by FDR rate and can be narrowed by category and a case-insensitive
regular expression over their names.`,
		Example: `  protnet terms network.json --enrichment-url http://localhost:5000
  protnet terms network.json --mode show --category KEGG --csv hubs.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			if a.cfg.EnrichmentURL == "" {
				return errors.New("no enrichment backend configured, set --enrichment-url")
			}
			client, err := enrichment.NewClient(a.cfg.EnrichmentURL, &http.Client{Timeout: a.cfg.EnrichmentTimeout})
			if err != nil {
				return err
			}

			snap, err := loadSnapshot(args[0], recompute)
			if err != nil {
				return err
			}
			nodes := snap.Nodes
			if mode != "" {
				m, err := parseModeFlag(mode)
				if err != nil {
					return err
				}
				if nodes, err = hubs.Classify(nodes, m); err != nil {
					return err
				}
			}
			if len(nodes) == 0 {
				return errors.New("no proteins left to enrich")
			}
			if species == "" {
				species = nodes[0].Species
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.EnrichmentTimeout)
			defer cancel()
			terms, err := client.FetchTerms(ctx, graph.NodeIDs(nodes), species)
			if err != nil {
				return err
			}
			a.logger.Info("fetched terms", "proteins", len(nodes), "terms", len(terms))

			b := enrichment.NewBrowser()
			b.Push(terms)
			if err := b.Filter(category); err != nil {
				return err
			}
			if err := b.Search(search); err != nil {
				return err
			}

			if csvFile != "" {
				return writeTermsCSV(csvFile, b.Terms())
			}
			renderTerms(cmd.OutOrStdout(), b.Terms())
			return nil
		},
	}

	cmd.Flags().StringVar(&species, "species", "", "species id (default: the first node's species)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "only show terms of this category")
	cmd.Flags().StringVarP(&search, "search", "s", "", "only show terms whose name matches this regex")
	cmd.Flags().StringVar(&csvFile, "csv", "", "write the terms to this CSV file instead of printing them")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "enrich only the nodes kept by this hub mode")
	cmd.Flags().BoolVar(&recompute, "recompute-degrees", false, "count degrees from the snapshot's edges")

	_ = cmd.RegisterFlagCompletionFunc("category", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		keys := make([]string, len(enrichment.Categories))
		for i, c := range enrichment.Categories {
			keys[i] = c.Key
		}
		return keys, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func writeTermsCSV(path string, terms []enrichment.Term) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := enrichment.WriteCSV(f, terms); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func renderTerms(w io.Writer, terms []enrichment.Term) {
	if len(terms) == 0 {
		_, _ = fmt.Fprintln(w, "(0 terms)")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Category", "FDR", "Name", "Proteins"})
	for _, t := range terms {
		label := t.Category
		if c, ok := enrichment.LookupCategory(t.Category); ok {
			label = c.Label
		}
		tw.AppendRow(table.Row{label, strconv.FormatFloat(t.FDRRate, 'g', 4, 64), t.Name, len(t.Proteins)})
	}
	tw.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d terms", len(terms))})
	tw.Render()
}
