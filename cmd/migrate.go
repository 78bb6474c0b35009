package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the target schema and tables",
	Long:  "Creates the configured schema (Postgres), the hospitals table, and the load log if they do not exist.",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		zap.L().Info("schema and tables ready",
			zap.String("driver", cfg.Store.Driver),
			zap.String("schema", cfg.Store.Schema),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
