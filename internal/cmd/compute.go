package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aevon-lab/reorder-features/internal/aggregation"
)

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Aggregate every partition",
	Long: `Aggregate every partition of the assignment and persist one feature table
per partition. Partitions completed by an earlier run are skipped according
to the resume policy:

  validate  skip when the stored table matches its completion marker (default)
  exists    skip when anything is stored for the partition
  none      recompute everything`,
	RunE: runCompute,
}

func init() {
	addEngineFlags(computeCmd)
}

func runCompute(c *cobra.Command, _ []string) error {
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

	summary, err := aggregation.NewEngine(store, opts).Run(ctx, rows)
	if err != nil {
		return err
	}
	printSummary(c, summary)
	pushMetrics(ctx)
	return nil
}

func printSummary(c *cobra.Command, s aggregation.RunSummary) {
	fmt.Fprintf(c.OutOrStdout(), "run: %s\ncomputed: %d\nskipped: %d\nrows: %d\n",
		s.RunID, len(s.Computed), len(s.Skipped), s.Rows)
}
