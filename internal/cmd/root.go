package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aevon-lab/reorder-features/internal/aggregation"
	corecfg "github.com/aevon-lab/reorder-features/internal/core/config"
)

var (
	configPath string
	logLevel   string

	// cfg is loaded once per invocation by the root pre-run hook.
	cfg *corecfg.Config
)

var rootCmd = &cobra.Command{
	Use:   "reorderfeat",
	Short: "Per-user re-order features over order history",
	Long: `reorderfeat computes per (user, product) re-order features from a flat
order history table.

Users are split into persisted partitions, each partition is aggregated
independently and the partition tables are merged into one feature table.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(computeCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	level, err := parseLogLevel(logLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	loaded, err := corecfg.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = loaded
	slog.Debug("Loaded config", "config", cfg)

	aggregation.Init()
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return 0, fmt.Errorf("invalid --log-level %q: %w", s, err)
	}
	return level, nil
}
