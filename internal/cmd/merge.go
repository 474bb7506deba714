package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aevon-lab/reorder-features/internal/aggregation"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Concatenate partition tables into the merged feature table",
	RunE:  runMerge,
}

func runMerge(c *cobra.Command, _ []string) error {
	ctx := c.Context()

	store, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	merged, err := aggregation.NewEngine(store, aggregation.DefaultEngineOptions()).Merge(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.OutOrStdout(), "merged rows: %d\n", len(merged))
	pushMetrics(ctx)
	return nil
}
