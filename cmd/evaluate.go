package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pollenops/pollenguard/app"
	"github.com/pollenops/pollenguard/config"
	"github.com/pollenops/pollenguard/core/fleet"
	"github.com/pollenops/pollenguard/infra/logger"
	"github.com/pollenops/pollenguard/pkg/importer"
)

var (
	evalLocation  string
	evalInventory string
	evalDemo      bool
	evalSimulate  bool
	evalExplain   bool
	evalJSON      bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run a one-shot fleet wash evaluation",
	RunE:  runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&evalLocation, "location", "", "free-text location query (overrides configured site)")
	evaluateCmd.Flags().StringVar(&evalInventory, "inventory", "", "CSV inventory file")
	evaluateCmd.Flags().BoolVar(&evalDemo, "demo", false, "seed the demonstration fleet")
	evaluateCmd.Flags().BoolVar(&evalSimulate, "simulate", false, "simulate high pollen for the fleet-default reading")
	evaluateCmd.Flags().BoolVar(&evalExplain, "explain", false, "request an AI explanation of the decision")
	evaluateCmd.Flags().BoolVar(&evalJSON, "json", false, "emit the report as JSON")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = config.Default()
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("evaluate-command").Errorf("service close: %v", err)
		}
	}()

	session := svc.Sessions().Create()
	if evalDemo {
		session.SeedDemo()
	}
	if evalInventory != "" {
		f, err := os.Open(evalInventory)
		if err != nil {
			return fmt.Errorf("open inventory: %w", err)
		}
		vehicles, err := importer.ReadCSV(f)
		if cerr := f.Close(); cerr != nil {
			return cerr
		}
		if err != nil {
			return err
		}
		if err := session.AddAll(vehicles); err != nil {
			return err
		}
	}
	if session.Len() == 0 {
		return fmt.Errorf("no inventory: pass --inventory or --demo")
	}

	report, err := svc.Evaluate(ctx, session, app.EvaluateOptions{
		LocationQuery: evalLocation,
		Simulate:      evalSimulate,
		Explain:       evalExplain,
	})
	if err != nil {
		return err
	}

	if evalJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, report fleet.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Location: %s\n", report.Location)
	fmt.Fprintf(out, "Pollen (PM10): %.1f   AQI: %d\n", report.Default.PollenPM10, report.Default.AQI)
	if report.Default.Simulated {
		fmt.Fprintln(out, "(simulated pollen reading)")
	}
	fmt.Fprintf(out, "\n%s [%s]\n%s\n\n", report.Decision.Label, report.Decision.Tier, report.Decision.Rationale)
	for _, row := range report.Vehicles {
		fmt.Fprintf(out, "%-12s %-16s %-12s %-12s %s\n",
			row.Vehicle.Label(), row.Vehicle.Model, row.Vehicle.Storage, row.ActionLabel, row.Location)
	}
	fmt.Fprintf(out, "\nEstimated water saved today: %d gallons\n", report.WaterSavedGallons)
	if report.Explanation != "" {
		fmt.Fprintf(out, "\n%s\n", report.Explanation)
	} else if report.ExplanationError != "" {
		fmt.Fprintf(out, "\nAI explanation unavailable (%s)\n", report.ExplanationError)
	}
}
