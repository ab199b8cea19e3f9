package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/psidex/protnet/internal/viewtree"
)

// NewTreeCommand creates the tree command.
func NewTreeCommand() *cobra.Command {
	var selectIndex string

	cmd := &cobra.Command{
		Use:   "tree <trees.json>",
		Short: "Print a view tree hierarchy",
		Long: `Print the hierarchy of a view tree file. Every node is labelled with its
dotted index, e.g. "Kinases [1.2]". --select prints only the subtree at an index.`,
		Example: `  protnet tree clusters.json
  protnet tree clusters.json --select 1.2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			trees, err := viewtree.ReadTrees(f)
			if err != nil {
				return err
			}

			if selectIndex != "" {
				index, err := viewtree.ParseIndex(selectIndex)
				if err != nil {
					return err
				}
				node, err := viewtree.Find(trees, index)
				if err != nil {
					return err
				}
				trees = []*viewtree.Node{node}
			}

			if len(trees) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "(empty)")
				return nil
			}
			viewtree.Render(cmd.OutOrStdout(), trees)
			return nil
		},
	}

	cmd.Flags().StringVar(&selectIndex, "select", "", "dotted index of the subtree to print")

	return cmd
}
