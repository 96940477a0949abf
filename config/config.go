package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost     string `envconfig:"DB_HOST"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"scholar_graph.db"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"8080"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`
	// Kommagetrennt; leer erlaubt alle Origins
	CORSOrigins string `envconfig:"CORS_ORIGINS"`
	LogMode     string `envconfig:"LOG_MODE" default:"production"`

	// Schwellwerte der Signifikanzfilterung
	GraphSmallThreshold  int `envconfig:"GRAPH_SMALL_THRESHOLD" default:"20"`
	GraphMinConnectivity int `envconfig:"GRAPH_MIN_CONNECTIVITY" default:"2"`

	S3Key    string `envconfig:"S3_KEY"`
	S3Secret string `envconfig:"S3_SECRET"`
	S3URL    string `envconfig:"S3_URL"`
	S3Region string `envconfig:"S3_REGION" default:"eu-central-1"`
	S3Bucket string `envconfig:"S3_BUCKET"`

	// Leer deaktiviert den geplanten Snapshot-Export
	SnapshotCron   string `envconfig:"SNAPSHOT_CRON"`
	SnapshotPrefix string `envconfig:"SNAPSHOT_PREFIX" default:"graph"`
	BackupKeep     int    `envconfig:"BACKUP_KEEP" default:"7"`

	// Optionaler Redis-Lock für Gewichts-Upserts beim Import
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	ImportLockTTL time.Duration `envconfig:"IMPORT_LOCK_TTL" default:"30s"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// S3Enabled meldet, ob Zugangsdaten für S3 konfiguriert sind.
func (c *Config) S3Enabled() bool {
	return c.S3URL != "" && c.S3Bucket != "" && c.S3Key != "" && c.S3Secret != ""
}

// CORSOriginList zerlegt CORS_ORIGINS.
func (c *Config) CORSOriginList() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate prüft die treiberabhängigen Pflichtfelder.
func (c *Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case DriverPostgres:
		for name, v := range map[string]string{"DB_HOST": c.DBHost, "DB_USER": c.DBUser, "DB_NAME": c.DBName} {
			if v == "" {
				errs = append(errs, fmt.Errorf("%s is required for driver %s", name, c.DBDriver))
			}
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for driver sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
	}
	if c.GraphSmallThreshold < 1 {
		errs = append(errs, errors.New("GRAPH_SMALL_THRESHOLD must be >= 1"))
	}
	if c.GraphMinConnectivity < 0 {
		errs = append(errs, errors.New("GRAPH_MIN_CONNECTIVITY must be >= 0"))
	}
	if c.SnapshotCron != "" && !c.S3Enabled() {
		errs = append(errs, errors.New("SNAPSHOT_CRON requires S3_URL, S3_BUCKET, S3_KEY and S3_SECRET"))
	}
	return errors.Join(errs...)
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}
