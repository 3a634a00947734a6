// Package testutil opens throwaway relational stores for tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	migrations "condobook/internal/migrations/postgres"
	"condobook/pkg/db/postgres"
	"condobook/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenSQLite returns a migrated in-memory database private to t. The pool
// holds a single connection, so transactions are serialized and every query
// issued inside one must go through the transaction handle.
func OpenSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared&_foreign_keys=1", name, uuid.NewString())

	gdb, err := postgres.Open(sqlite.Open(dsn), postgres.PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := migrations.RunMigration(context.Background(), gdb, logger.Nop()); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return gdb
}
