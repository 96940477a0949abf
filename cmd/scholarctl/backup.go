package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scholar-graph/config"
	"scholar-graph/storage"
)

var backupPrefix string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Dump the database, upload it to S3 and rotate old backups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := env()
		if err != nil {
			return err
		}
		defer logger.Sync()
		if !cfg.S3Enabled() {
			return errors.New("S3 is not configured (S3_URL, S3_BUCKET, S3_KEY, S3_SECRET)")
		}
		objects, err := storage.NewS3(cfg)
		if err != nil {
			return err
		}
		return runBackup(cmd.Context(), cfg, objects, backupPrefix, time.Now(), logger)
	},
}

func init() {
	backupCmd.Flags().StringVar(&backupPrefix, "prefix", "backups", "Object key prefix for backups")
}

func runBackup(ctx context.Context, cfg *config.Config, objects storage.ObjectStore, prefix string, now time.Time, log *zap.Logger) error {
	log.Info("Starting backup", zap.String("driver", cfg.DBDriver))

	data, ext, err := createDump(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create dump: %w", err)
	}

	key := backupKey(prefix, ext, now)
	url, err := objects.Put(ctx, key, data, "application/gzip")
	if err != nil {
		return fmt.Errorf("upload backup: %w", err)
	}
	log.Info("Backup uploaded", zap.String("url", url), zap.Int("bytes", len(data)))

	deleted, err := storage.Rotate(ctx, objects, prefix+"/", cfg.BackupKeep, log)
	if err != nil {
		return fmt.Errorf("rotate backups: %w", err)
	}
	log.Info("Backup completed", zap.Int("rotated", len(deleted)))
	return nil
}

func backupKey(prefix, ext string, now time.Time) string {
	return path.Join(prefix, fmt.Sprintf("backup-%s.%s.gz", now.UTC().Format("2006-01-02T15-04-05Z"), ext))
}

// createDump liefert den gzip-komprimierten Dump und die Dateiendung vor ".gz".
func createDump(ctx context.Context, cfg *config.Config) ([]byte, string, error) {
	if cfg.DBDriver == config.DriverSQLite {
		f, err := os.Open(cfg.SQLitePath)
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		data, err := compress(f)
		return data, "sqlite", err
	}

	cmd := exec.CommandContext(ctx, "pg_dump",
		"-h", cfg.DBHost,
		"-p", fmt.Sprint(cfg.DBPort),
		"-U", cfg.DBUser,
		"-d", cfg.DBName,
		"-w", // Passwort kommt über PGPASSWORD
	)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+cfg.DBPassword)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, "", err
	}
	if err := cmd.Start(); err != nil {
		return nil, "", err
	}
	data, err := compress(stdout)
	if err != nil {
		_ = cmd.Wait()
		return nil, "", err
	}
	if err := cmd.Wait(); err != nil {
		return nil, "", err
	}
	return data, "sql", nil
}

func compress(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := io.Copy(zw, r); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
