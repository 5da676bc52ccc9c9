package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pollenops/pollenguard/config"
	"github.com/pollenops/pollenguard/core/history"
)

var historySince time.Duration

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored evaluation reports",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().DurationVar(&historySince, "since", 24*time.Hour, "how far back to list reports")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var store history.Store
	switch cfg.History.Backend {
	case "sqlite":
		store, err = history.NewSQLiteStore(cfg.History.Path)
	default:
		store, err = history.NewJSONLStore(cfg.History.Path)
	}
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() { _ = store.Close() }()

	recs, err := store.Query(context.Background(), history.Query{Start: time.Now().Add(-historySince)})
	if err != nil {
		return err
	}
	for _, r := range recs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-12s %-24s wash=%d hold=%d saved=%dgal\n",
			r.Timestamp.Format(time.RFC3339), r.Report.Decision.Label, r.Location,
			r.Report.WashCount, r.Report.HoldCount, r.Report.WaterSavedGallons)
	}
	return nil
}
