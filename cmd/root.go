package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/statemetrics/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "statemetrics",
	Short: "Housing-price vs violent-crime state summary pipeline",
	Long:  "Merges a local housing-price table with FBI crime statistics into one per-state summary, computes crime rates, rankings, and the price-rate correlation, and writes the result to a database, flat files, and a scatter plot.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
