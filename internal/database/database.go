package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"expense-tracker/internal/config"
	"expense-tracker/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// reportIndexes back the per-user date window scans of the monthly report and
// the category breakdown. They are idempotent, so the versioned migration and
// the AutoMigrate fallback can both run them.
var reportIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date)",
	"CREATE INDEX IF NOT EXISTS idx_transactions_user_category_date ON transactions(user_id, category, date)",
}

// DB wraps the gorm handle shared by the repositories and the health check
type DB struct {
	*gorm.DB
}

func gormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:  logger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Open connects to Postgres with the configured pool limits
func Open(ctx context.Context, cfg *config.DatabaseConfig, level logger.LogLevel) (*DB, error) {
	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig(level))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{DB: gdb}, nil
}

// AutoMigrate creates the transactions table from the model and adds the report indexes
func (db *DB) AutoMigrate() error {
	if err := db.DB.AutoMigrate(&models.Transaction{}); err != nil {
		return err
	}
	for _, stmt := range reportIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GormLogLevel picks gorm's logger verbosity for an environment
func GormLogLevel(cfg *config.Config) logger.LogLevel {
	switch {
	case cfg.IsTesting():
		return logger.Silent
	case cfg.IsDevelopment():
		return logger.Info
	default:
		return logger.Warn
	}
}

// Initialize opens the database and brings its schema up to date. When the
// versioned migrations cannot run, the schema is derived from the model instead.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := Open(ctx, &cfg.Database, GormLogLevel(cfg))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if err := Migrate(ctx, sqlDB, &cfg.Database); err != nil {
		slog.Warn("versioned migrations failed, falling back to AutoMigrate", "error", err)
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	slog.Info("database ready", "host", cfg.Database.Host, "name", cfg.Database.Name)
	return db, nil
}
