package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pollenops/pollenguard/api/wash"
	"github.com/pollenops/pollenguard/app"
	"github.com/pollenops/pollenguard/config"
	"github.com/pollenops/pollenguard/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "pollenguard",
	Short: "Fleet wash advisory service",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	handler := wash.NewHandler(svc, logger.New("api"))
	return svc.Run(ctx, handler)
}
