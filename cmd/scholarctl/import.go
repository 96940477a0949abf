package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scholar-graph/lock"
	"scholar-graph/services"
)

var importCmd = &cobra.Command{
	Use:   "import <file-or-dir>",
	Short: "Import scraped scholar records",
	Long:  "Imports a single scholar JSON record or every *.json file in a directory. Re-importing the same data is idempotent.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := env()
		if err != nil {
			return err
		}
		defer logger.Sync()

		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		var locker lock.PairLocker = lock.Noop{}
		if cfg.RedisAddr != "" {
			rdb, err := lock.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
			if err != nil {
				return err
			}
			defer rdb.Close()
			locker = lock.NewRedis(rdb, cfg.ImportLockTTL, logger)
		}
		imp := services.NewScholarImporter(st, locker, logger)

		info, err := os.Stat(args[0])
		if err != nil {
			return err
		}
		var out any
		if info.IsDir() {
			stats, err := imp.ImportDir(ctx, args[0])
			if err != nil {
				return err
			}
			if stats.Failed > 0 {
				logger.Warn("Some records failed to import", zap.Strings("files", stats.FailedFiles))
			}
			out = stats
		} else {
			res, err := imp.ImportFile(ctx, args[0])
			if err != nil {
				return err
			}
			out = res
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		return nil
	},
}
