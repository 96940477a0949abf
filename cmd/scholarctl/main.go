// scholarctl bündelt die Betriebskommandos: Import, Snapshot-Export und Backup.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scholar-graph/config"
	"scholar-graph/store"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "scholarctl",
	Short:         "Operations for the scholar graph",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Development logging")
	rootCmd.AddCommand(importCmd, snapshotCmd, backupCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env lädt Konfiguration und Logger für ein Kommando.
func env() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	var logger *zap.Logger
	if verbose || cfg.LogMode == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func openStore(cfg *config.Config, logger *zap.Logger) (*store.Store, error) {
	st, err := store.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := st.AutoMigrate(); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}
