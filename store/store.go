// Package store ist die relationale Persistenz des Graph-Backends auf GORM.
// Er implementiert graph.Store und filter.Store sowie den Schreibpfad des
// Imports.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"scholar-graph/apierr"
	"scholar-graph/config"
	"scholar-graph/models"
)

// Store kapselt eine GORM-Verbindung oder eine laufende Transaktion.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log.With(zap.String("component", "store"))}
}

// Open verbindet sich je nach DB_DRIVER mit PostgreSQL oder SQLite.
func Open(cfg *config.Config, log *zap.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
	}
	log.Info("Successfully connected to database", zap.String("driver", cfg.DBDriver))
	return New(db, log), nil
}

// Models sind alle Tabellen des Schemas in Migrationsreihenfolge.
var Models = []any{
	&models.Entity{},
	&models.Scholar{},
	&models.Publication{},
	&models.Authorship{},
	&models.Institution{},
	&models.ScholarInstitution{},
	&models.Interest{},
	&models.Relationship{},
}

func (s *Store) AutoMigrate() error {
	s.log.Info("Running database auto-migration...")
	if err := s.db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// DB gibt die zugrunde liegende Verbindung zurück.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close schließt die Verbindung.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping prüft die Verbindung.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrap("store.Ping", err)
	}
	return wrap("store.Ping", sqlDB.PingContext(ctx))
}

// Transaction führt fn in einer Transaktion aus. Jeder Fehler von fn rollt
// alles zurück.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&Store{db: db, log: s.log})
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// wrap übersetzt GORM-Fehler in die apierr-Taxonomie.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierr.NotFound(op, err)
	}
	return apierr.Persistence(op, err)
}
