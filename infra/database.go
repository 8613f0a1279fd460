// Package infra provides infrastructure wiring: database connections and
// shared persistence helpers.
package infra

import (
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wanjalab/pesaflow/infra/repository/session"
	"github.com/wanjalab/pesaflow/infra/repository/transaction"
	"github.com/wanjalab/pesaflow/pkg/config"
)

// NewDBConnection opens a Postgres connection with pool limits. Query
// logging is only enabled in development.
func NewDBConnection(cfg *config.DB, appEnv string) (*gorm.DB, error) {
	if cfg.Url == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	logMode := logger.Silent
	if appEnv == "development" {
		logMode = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.Url), &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	return db, nil
}

// Migrate creates or updates the session and transaction tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&session.QRSession{},
		&transaction.Transaction{},
	)
}
