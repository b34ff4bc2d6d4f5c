package db

import (
	"log"
	"time"

	"agrifi-backend/internal/domain/agreement"
	"agrifi-backend/internal/domain/event"
	"agrifi-backend/internal/domain/loan"
	"agrifi-backend/internal/domain/token"
	"agrifi-backend/internal/domain/wallet"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func OpenGorm(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}
	db, err := gorm.Open(mysql.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	log.Println("gorm: connected")
	return db, nil
}

// Migrate creates/updates every ledger table. Safe to run on each boot.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&token.Token{},
		&loan.Loan{},
		&agreement.Agreement{},
		&agreement.Settings{},
		&wallet.Account{},
		&wallet.Entry{},
		&event.Event{},
	)
}
