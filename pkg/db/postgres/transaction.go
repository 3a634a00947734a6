package postgres

import (
	"context"

	"condobook/pkg/db"

	"gorm.io/gorm"
)

type txKey struct{}

type gormTransactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(gdb *gorm.DB) db.TransactionManager {
	return &gormTransactionManager{db: gdb}
}

// ExecuteTransaction runs fn inside a gorm transaction carried by ctx. Nested
// calls join the outer transaction.
func (m *gormTransactionManager) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Conn returns the transaction bound to ctx, or gdb scoped to ctx.
func Conn(ctx context.Context, gdb *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return gdb.WithContext(ctx)
}
