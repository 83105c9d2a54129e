package database

import (
	"testing"
	"time"

	"expense-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB returns a migrated in-memory sqlite database that is closed when
// the test ends. The pool is pinned to one connection because every new
// sqlite connection to ":memory:" would see an empty database.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), gormConfig(logger.Silent))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db := &DB{DB: gdb}
	if err := db.AutoMigrate(); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// CreateTestTransaction stores one expense of amount for userID
func CreateTestTransaction(t *testing.T, db *DB, userID uuid.UUID, amount string, date time.Time, category string) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:   userID,
		Amount:   decimal.RequireFromString(amount),
		Merchant: "Test Merchant",
		Date:     date,
		Category: category,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("create test transaction: %v", err)
	}
	return tx
}
