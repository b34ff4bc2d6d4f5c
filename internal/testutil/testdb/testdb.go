// Package testdb opens throwaway sqlite databases carrying the full ledger
// schema, for repository and usecase tests.
package testdb

import (
	"testing"

	"agrifi-backend/internal/domain/agreement"
	"agrifi-backend/internal/domain/event"
	"agrifi-backend/internal/domain/loan"
	"agrifi-backend/internal/domain/token"
	"agrifi-backend/internal/domain/wallet"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Open(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	// a second pool connection would see its own empty :memory: database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&token.Token{},
		&loan.Loan{},
		&agreement.Agreement{},
		&agreement.Settings{},
		&wallet.Account{},
		&wallet.Entry{},
		&event.Event{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
