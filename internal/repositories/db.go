// Package repositories provides data access layer implementations.
// It handles all database operations and data persistence logic.
package repositories

import (
	"fmt"
	"log"
	"os"
	"time"

	"stagepay/internal/config"
	"stagepay/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// oneActiveDisputeIndex enforces at most one open or investigating dispute per
// booking. Two concurrent reports race on this index; the loser gets a
// unique violation that the dispute repository turns into ErrDuplicateDispute.
const oneActiveDisputeIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_disputes_one_active_per_booking
	ON disputes (booking_id) WHERE status IN ('open', 'admin_investigating')`

// InitDB opens the PostgreSQL connection, configures the pool and applies
// migrations.
func InitDB(cfg config.DBConfig) (*gorm.DB, error) {
	// Configure GORM logger to ignore "record not found" errors
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  !config.IsProduction(),
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("✅ PostgreSQL connected & migrations applied successfully!")
	return db, nil
}

// Migrate creates or updates every table the engine owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Booking{},
		&models.Dispute{},
		&models.CancellationRequest{},
		&models.Notification{},
		&models.ScheduledTask{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if err := db.Exec(oneActiveDisputeIndex).Error; err != nil {
		return fmt.Errorf("create active dispute index: %w", err)
	}
	return nil
}
