package repositories

import (
	"context"

	"expense-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRepositoryInterface defines the contract for transaction repository operations.
// Every read is scoped to a single owner.
type TransactionRepositoryInterface interface {
	Create(ctx context.Context, transaction *models.Transaction) error
	CreateBatch(ctx context.Context, transactions []models.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error

	// Listing
	FindPage(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, error)
	Count(ctx context.Context, filters models.TransactionFilters) (int64, error)
	FindPageWithCount(ctx context.Context, filters models.TransactionFilters) (*models.TransactionPage, error)

	// Aggregates used by the monthly report
	SumAmount(ctx context.Context, userID uuid.UUID, window models.DateRange) (decimal.Decimal, error)
	SumAmountByCategory(ctx context.Context, userID uuid.UUID, window models.DateRange) ([]models.CategoryAmount, error)
	ListAmountsByDate(ctx context.Context, userID uuid.UUID, window models.DateRange) ([]models.DailyAmount, error)
}
