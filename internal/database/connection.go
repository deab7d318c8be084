// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openkb/product-kb/internal/config"
	"github.com/openkb/product-kb/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*Store, error) {
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	var (
		db  *gorm.DB
		err error
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		db, err = gorm.Open(postgres.Open(cfg.PostgresDSN()), gormConfig)
	default:
		db, err = gorm.Open(sqlite.Open(cfg.SQLiteDSN()), gormConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool. SQLite gets a single connection because the
	// engine supports only one writer at a time.
	if cfg.Driver == config.DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithField("driver", cfg.Driver).Info("Database connection established")
	return NewStore(db, cfg.Driver == config.DriverSQLite), nil
}

func Close(s *Store) {
	sqlDB, err := s.db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed")
	}
}

func RunMigrations(s *Store) error {
	logrus.Info("Running database migrations...")

	err := s.db.AutoMigrate(
		&models.Item{},
		&models.Image{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logrus.Info("Database migrations completed")
	return nil
}
