// Package sqlstoretest opens throwaway SQLite databases for tests.
package sqlstoretest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/MrSnakeDoc/socialhub/internal/connect"
	"github.com/MrSnakeDoc/socialhub/internal/logger"
	"github.com/MrSnakeDoc/socialhub/internal/store/sqlstore"
)

// Open returns a migrated SQLite database stored in the test's temp dir.
// It is closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := sqlstore.Open(context.Background(), sqlstore.Options{
		Driver: sqlstore.DriverSQLite,
		DSN:    dsn,
		Retry: connect.Options{
			ConnectTimeout: 2 * time.Second,
			RetryInterval:  10 * time.Millisecond,
			MaxWait:        50 * time.Millisecond,
			PingTimeout:    time.Second,
		},
	}, logger.NewNop())
	if err != nil {
		t.Fatalf("sqlstoretest: open: %v", err)
	}
	if err := sqlstore.Migrate(db); err != nil {
		t.Fatalf("sqlstoretest: migrate: %v", err)
	}

	t.Cleanup(func() {
		if err := sqlstore.Close(db); err != nil {
			t.Errorf("sqlstoretest: close: %v", err)
		}
	})
	return db
}
