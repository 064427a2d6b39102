package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"hotmess/config"
	"hotmess/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens the right-now store and checks that it answers.
func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dbLog := logger.New(log.New(os.Stdout, "[DB] ", log.LstdFlags), logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{Logger: dbLog})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("connection pool: %w", err)
	}
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

// AutoMigrate creates or updates the right_now_posts table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.RightNowPost{})
}
