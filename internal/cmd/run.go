package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aevon-lab/reorder-features/internal/aggregation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Assign, compute and merge in one step",
	RunE:  runAll,
}

func init() {
	addEngineFlags(runCmd)
}

func runAll(c *cobra.Command, _ []string) error {
	ctx := c.Context()

	opts, err := engineOptions(c)
	if err != nil {
		return err
	}
	rows, err := loadRows(c)
	if err != nil {
		return err
	}

	store, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := aggregation.NewEngine(store, opts)
	summary, err := engine.Run(ctx, rows)
	if err != nil {
		return err
	}
	printSummary(c, summary)

	merged, err := engine.Merge(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.OutOrStdout(), "merged rows: %d\n", len(merged))
	pushMetrics(ctx)
	return nil
}
