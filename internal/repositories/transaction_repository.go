package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"expense-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
)

// moneyScale is the scale of the amount column; aggregates are rounded to it.
const moneyScale = 2

const categoryExpr = "COALESCE(NULLIF(category, ''), '" + models.DefaultCategory + "')"

// transactionRepository implements TransactionRepositoryInterface
type transactionRepository struct {
	db            *gorm.DB
	pageIsolation sql.IsolationLevel
}

// TransactionRepositoryOption configures a transaction repository
type TransactionRepositoryOption func(*transactionRepository)

// WithPageIsolation sets the isolation level of the count+page read
func WithPageIsolation(level sql.IsolationLevel) TransactionRepositoryOption {
	return func(r *transactionRepository) {
		r.pageIsolation = level
	}
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB, opts ...TransactionRepositoryOption) TransactionRepositoryInterface {
	r := &transactionRepository{
		db:            db,
		pageIsolation: sql.LevelDefault,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create creates a new transaction
func (r *transactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(transaction).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// CreateBatch creates multiple transactions in a single database transaction
func (r *transactionRepository) CreateBatch(ctx context.Context, transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&transactions).Error; err != nil {
			return fmt.Errorf("failed to create batch transactions: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a transaction by ID
func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &transaction, nil
}

// UpdateFields applies a partial update to a transaction
func (r *transactionRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	updates := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// FindPage returns one page of the owner's transactions, newest first
func (r *transactionRepository) FindPage(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, error) {
	return r.findPage(r.db.WithContext(ctx), filters)
}

// Count returns how many transactions match the filters
func (r *transactionRepository) Count(ctx context.Context, filters models.TransactionFilters) (int64, error) {
	return r.count(r.db.WithContext(ctx), filters)
}

// FindPageWithCount reads the total and the page in one database transaction
// so the count matches the returned rows under concurrent writes.
func (r *transactionRepository) FindPageWithCount(ctx context.Context, filters models.TransactionFilters) (*models.TransactionPage, error) {
	page := &models.TransactionPage{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		total, err := r.count(tx, filters)
		if err != nil {
			return err
		}

		transactions, err := r.findPage(tx, filters)
		if err != nil {
			return err
		}

		page.Total = total
		page.Transactions = transactions
		return nil
	}, r.pageTxOptions())
	if err != nil {
		return nil, err
	}

	return page, nil
}

func (r *transactionRepository) pageTxOptions() *sql.TxOptions {
	if r.pageIsolation == sql.LevelDefault {
		return nil
	}
	return &sql.TxOptions{Isolation: r.pageIsolation, ReadOnly: true}
}

func (r *transactionRepository) findPage(db *gorm.DB, filters models.TransactionFilters) ([]models.Transaction, error) {
	transactions := make([]models.Transaction, 0)

	query := applyTransactionFilters(db.Model(&models.Transaction{}), filters)
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("date DESC").Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get filtered transactions: %w", err)
	}

	return transactions, nil
}

func (r *transactionRepository) count(db *gorm.DB, filters models.TransactionFilters) (int64, error) {
	var total int64
	if err := applyTransactionFilters(db.Model(&models.Transaction{}), filters).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count filtered transactions: %w", err)
	}
	return total, nil
}

func applyTransactionFilters(query *gorm.DB, filters models.TransactionFilters) *gorm.DB {
	query = query.Where("user_id = ?", filters.UserID)

	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.StartDate != nil {
		query = query.Where("date >= ?", filters.StartDate.UTC())
	}
	if filters.EndDate != nil {
		query = query.Where("date <= ?", filters.EndDate.UTC())
	}

	return query
}

func scopeWindow(db *gorm.DB, userID uuid.UUID, window models.DateRange) *gorm.DB {
	return db.Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Where("date BETWEEN ? AND ?", window.Start.UTC(), window.End.UTC())
}

// SumAmount sums amounts inside the window; no rows sums to zero
func (r *transactionRepository) SumAmount(ctx context.Context, userID uuid.UUID, window models.DateRange) (decimal.Decimal, error) {
	var result struct {
		Total decimal.NullDecimal
	}

	if err := scopeWindow(r.db.WithContext(ctx), userID, window).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&result).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transaction amounts: %w", err)
	}

	if !result.Total.Valid {
		return decimal.Zero, nil
	}
	return result.Total.Decimal.Round(moneyScale), nil
}

// SumAmountByCategory sums amounts per category inside the window
func (r *transactionRepository) SumAmountByCategory(ctx context.Context, userID uuid.UUID, window models.DateRange) ([]models.CategoryAmount, error) {
	breakdown := make([]models.CategoryAmount, 0)

	if err := scopeWindow(r.db.WithContext(ctx), userID, window).
		Select(categoryExpr + " AS category, COALESCE(SUM(amount), 0) AS amount").
		Group(categoryExpr).
		Order("category").
		Scan(&breakdown).Error; err != nil {
		return nil, fmt.Errorf("failed to sum transaction amounts by category: %w", err)
	}

	for i := range breakdown {
		breakdown[i].Amount = breakdown[i].Amount.Round(moneyScale)
	}

	return breakdown, nil
}

// ListAmountsByDate returns the (date, amount) projection of the window
func (r *transactionRepository) ListAmountsByDate(ctx context.Context, userID uuid.UUID, window models.DateRange) ([]models.DailyAmount, error) {
	points := make([]models.DailyAmount, 0)

	if err := scopeWindow(r.db.WithContext(ctx), userID, window).
		Select("date, amount").
		Order("date ASC").
		Scan(&points).Error; err != nil {
		return nil, fmt.Errorf("failed to list transaction amounts by date: %w", err)
	}

	for i := range points {
		points[i].Amount = points[i].Amount.Round(moneyScale)
	}

	return points, nil
}
