package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qbdaten/qbsync/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "qbsync",
	Short: "Import German hospital quality reports into a relational store",
	Long: "Parses Qualitätsberichte XML exports (qb-datenportal.g-ba.de), extracts each reporting " +
		"location's address and emergency-care participation, and upserts one row per location.",
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
