package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"expense-tracker/internal/models"
	"expense-tracker/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize    = 20
	MaxPageSize        = 100
	MaxImportBatchSize = 500
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrForbidden           = errors.New("transaction belongs to another user")
	ErrEmptyImport         = errors.New("import contains no transactions")
	ErrImportTooLarge      = fmt.Errorf("import exceeds %d transactions", MaxImportBatchSize)
	ErrEmptyUpdate         = errors.New("update contains no fields")
	ErrInvalidPagination   = fmt.Errorf("page must be >= 1 and limit between 1 and %d", MaxPageSize)
	ErrInvalidDateRange    = errors.New("start_date must not be after end_date")
)

// TransactionInput is a new expense as supplied by a caller; empty strings take defaults
type TransactionInput struct {
	Amount      decimal.Decimal
	Merchant    string
	Description string
	Date        time.Time
	Category    string
	Source      string
	Currency    string
	BankName    string
}

// ListQuery selects one page of a user's transactions. Zero Page/Limit take defaults.
type ListQuery struct {
	Page      int
	Limit     int
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
}

// TransactionList is one page of transactions with pagination totals
type TransactionList struct {
	Transactions []models.Transaction
	Total        int64
	Page         int
	Pages        int
	Limit        int
}

type transactionService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	metrics         MetricsRecorderInterface
	auditLogger     AuditLoggerInterface
	defaultCurrency string
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	transactionRepo repositories.TransactionRepositoryInterface,
	metrics MetricsRecorderInterface,
	auditLogger AuditLoggerInterface,
	defaultCurrency string,
) TransactionServiceInterface {
	if defaultCurrency == "" {
		defaultCurrency = models.DefaultCurrency
	}
	return &transactionService{
		transactionRepo: transactionRepo,
		metrics:         metrics,
		auditLogger:     auditLogger,
		defaultCurrency: strings.ToUpper(defaultCurrency),
	}
}

// CreateTransaction records a single manual expense
func (s *transactionService) CreateTransaction(ctx context.Context, userID uuid.UUID, input TransactionInput) (*models.Transaction, error) {
	transaction, err := s.buildTransaction(userID, input, models.SourceManual)
	if err != nil {
		return nil, err
	}

	if err := s.transactionRepo.Create(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.metrics.IncrementCounter(MetricTransactionCreated, map[string]string{"source": transaction.Source})
	s.auditLogger.LogTransactionCreated(ctx, transaction)

	return transaction, nil
}

// ImportTransactions records a batch atomically: either every row is stored or none is
func (s *transactionService) ImportTransactions(ctx context.Context, userID uuid.UUID, inputs []TransactionInput) ([]models.Transaction, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyImport
	}
	if len(inputs) > MaxImportBatchSize {
		return nil, ErrImportTooLarge
	}

	transactions := make([]models.Transaction, 0, len(inputs))
	total := decimal.Zero
	for i, input := range inputs {
		transaction, err := s.buildTransaction(userID, input, models.SourceImport)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		total = total.Add(transaction.Amount)
		transactions = append(transactions, *transaction)
	}

	if err := s.transactionRepo.CreateBatch(ctx, transactions); err != nil {
		return nil, fmt.Errorf("failed to import transactions: %w", err)
	}

	s.metrics.RecordGauge(MetricImportBatchSize, float64(len(transactions)), nil)
	for i := range transactions {
		s.metrics.IncrementCounter(MetricTransactionCreated, map[string]string{"source": transactions[i].Source})
	}
	s.auditLogger.LogTransactionsImported(ctx, userID, len(transactions), total)

	return transactions, nil
}

// GetTransaction returns one transaction owned by userID
func (s *transactionService) GetTransaction(ctx context.Context, userID, transactionID uuid.UUID) (*models.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	if !transaction.IsOwnedBy(userID) {
		s.auditLogger.LogOwnershipViolation(ctx, transactionID, userID, "get")
		return nil, ErrForbidden
	}

	return transaction, nil
}

// UpdateTransaction applies a partial update. A missing transaction is reported as
// forbidden so callers cannot discover ids they do not own.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID uuid.UUID, update models.TransactionUpdate) (*models.Transaction, error) {
	fields, err := updateFields(update)
	if err != nil {
		return nil, err
	}

	existing, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	if !existing.IsOwnedBy(userID) {
		s.auditLogger.LogOwnershipViolation(ctx, transactionID, userID, "update")
		return nil, ErrForbidden
	}

	if err := s.transactionRepo.UpdateFields(ctx, transactionID, fields); err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	updated, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload transaction: %w", err)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	s.metrics.IncrementCounter(MetricTransactionUpdated, nil)
	s.auditLogger.LogTransactionUpdated(ctx, transactionID, userID, names)

	return updated, nil
}

// ListTransactions returns one page of the user's transactions, newest first
func (s *transactionService) ListTransactions(ctx context.Context, userID uuid.UUID, query ListQuery) (*TransactionList, error) {
	start := time.Now()

	page, limit := query.Page, query.Limit
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = DefaultPageSize
	}
	if page < 1 || limit < 1 || limit > MaxPageSize {
		return nil, ErrInvalidPagination
	}
	// the row offset must stay representable
	if page > math.MaxInt/limit {
		return nil, ErrInvalidPagination
	}
	if query.StartDate != nil && query.EndDate != nil && query.StartDate.After(*query.EndDate) {
		return nil, ErrInvalidDateRange
	}

	filters := models.TransactionFilters{
		UserID:    userID,
		Category:  strings.TrimSpace(query.Category),
		StartDate: query.StartDate,
		EndDate:   query.EndDate,
		Offset:    (page - 1) * limit,
		Limit:     limit,
	}

	result, err := s.transactionRepo.FindPageWithCount(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	s.metrics.RecordProcessingTime(MetricListingDuration, time.Since(start))
	slog.Debug("transactions listed", "user_id", userID, "page", page, "limit", limit, "total", result.Total)

	return &TransactionList{
		Transactions: result.Transactions,
		Total:        result.Total,
		Page:         page,
		Pages:        totalPages(result.Total, limit),
		Limit:        limit,
	}, nil
}

func (s *transactionService) buildTransaction(userID uuid.UUID, input TransactionInput, defaultSource string) (*models.Transaction, error) {
	source := strings.ToUpper(strings.TrimSpace(input.Source))
	if source == "" {
		source = defaultSource
	}
	currency := strings.TrimSpace(input.Currency)
	if currency == "" {
		currency = s.defaultCurrency
	}

	transaction := &models.Transaction{
		UserID:      userID,
		Amount:      input.Amount,
		Merchant:    strings.TrimSpace(input.Merchant),
		Description: input.Description,
		Date:        input.Date,
		Category:    input.Category,
		Source:      source,
		Currency:    currency,
		BankName:    input.BankName,
	}

	transaction.ApplyDefaults()
	if err := transaction.Validate(); err != nil {
		return nil, err
	}

	return transaction, nil
}

// updateFields converts a partial update into column assignments, applying the same
// defaults and checks as creation
func updateFields(update models.TransactionUpdate) (map[string]interface{}, error) {
	fields := make(map[string]interface{})

	if update.Amount != nil {
		if !update.Amount.IsPositive() {
			return nil, models.ErrInvalidAmount
		}
		fields["amount"] = *update.Amount
	}
	if update.Merchant != nil {
		merchant := strings.TrimSpace(*update.Merchant)
		if merchant == "" {
			merchant = models.DefaultMerchant
		}
		fields["merchant"] = merchant
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.Category != nil {
		category := models.NormalizeCategory(*update.Category)
		if len(category) > models.MaxCategoryLength {
			return nil, models.ErrCategoryTooLong
		}
		fields["category"] = category
	}
	if update.BankName != nil {
		bank := strings.TrimSpace(*update.BankName)
		if len(bank) > models.MaxBankNameLength {
			return nil, models.ErrBankNameTooLong
		}
		fields["bank_name"] = bank
	}
	if update.Date != nil {
		if update.Date.IsZero() {
			return nil, models.ErrMissingDate
		}
		fields["date"] = update.Date.UTC()
	}

	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}

	return fields, nil
}

func totalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
