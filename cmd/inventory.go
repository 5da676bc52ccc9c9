package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pollenops/pollenguard/pkg/importer"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Inventory related commands",
}

var inventoryCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a CSV inventory file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInventoryCheck,
}

func init() {
	inventoryCmd.AddCommand(inventoryCheckCmd)
	rootCmd.AddCommand(inventoryCmd)
}

func runInventoryCheck(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open inventory: %w", err)
	}
	defer func() { _ = f.Close() }()

	vehicles, err := importer.ReadCSV(f)
	if err != nil {
		return err
	}
	for _, v := range vehicles {
		coords := "-"
		if v.Coords != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-16s %s (%.4f, %.4f)\n", v.Label(), v.Model, v.Storage, v.Coords.Lat, v.Coords.Lon)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-16s %s %s\n", v.Label(), v.Model, v.Storage, coords)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d vehicles OK\n", len(vehicles))
	return nil
}
