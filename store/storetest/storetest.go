// Package storetest stellt einen migrierten In-Memory-Store für Tests bereit.
package storetest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"scholar-graph/store"
)

var counter atomic.Int64

// NewTestingStore öffnet eine eigene SQLite-Datenbank im Speicher und
// migriert das Schema. Sie wird am Testende geschlossen.
func NewTestingStore(t testing.TB) *store.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:storetest_%d?mode=memory&cache=shared", counter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// Eine Verbindung hält die In-Memory-Datenbank am Leben und
	// serialisiert Transaktionen.
	sqlDB.SetMaxOpenConns(1)

	s := store.New(db, zap.NewNop())
	if err := s.AutoMigrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}
