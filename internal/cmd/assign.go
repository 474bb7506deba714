package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aevon-lab/reorder-features/internal/aggregation"
	"github.com/aevon-lab/reorder-features/internal/core/history"
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Create or show the partition assignment",
	Long: `Create the partition assignment from the input table, or load the one
persisted by an earlier run. Users are dealt round-robin over the partitions
in order of first appearance.`,
	RunE: runAssign,
}

func init() {
	assignCmd.Flags().IntVar(&flagPartitions, "partitions", 0, "Partition count for a new assignment (overrides engine.partition_count)")
	addSourceFlag(assignCmd)
}

func runAssign(c *cobra.Command, _ []string) error {
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

	_, order := history.GroupByUser(rows)
	asg, err := aggregation.NewEngine(store, opts).EnsureAssignment(ctx, order)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.OutOrStdout(), "partitions: %d\nusers: %d\n", asg.Count, asg.Total())
	return nil
}
