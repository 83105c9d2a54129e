package services

import (
	"context"
	"time"

	"expense-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AnalyticsServiceInterface computes the monthly dashboard report and the multi-month trend
type AnalyticsServiceInterface interface {
	GetMonthlyReport(ctx context.Context, userID uuid.UUID, query PeriodQuery) (*models.MonthlyReport, error)
	GetSpendingTrends(ctx context.Context, userID uuid.UUID, query TrendQuery) (*models.SpendingTrends, error)
}

// TransactionServiceInterface defines transaction recording and listing operations
type TransactionServiceInterface interface {
	CreateTransaction(ctx context.Context, userID uuid.UUID, input TransactionInput) (*models.Transaction, error)
	ImportTransactions(ctx context.Context, userID uuid.UUID, inputs []TransactionInput) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, userID, transactionID uuid.UUID) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID uuid.UUID, update models.TransactionUpdate) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, query ListQuery) (*TransactionList, error)
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

// TransactionGeneratorInterface generates realistic expense data for development seeding
type TransactionGeneratorInterface interface {
	GenerateTransactions(userID uuid.UUID, startDate, endDate time.Time, count int) []models.Transaction
	SelectRandomMerchant() models.MerchantInfo
	GenerateAmount(category string) decimal.Decimal
	GenerateTimestamp(startDate, endDate time.Time) time.Time
}

type TokenServiceInterface interface {
	GenerateAccessToken(userID uuid.UUID, email string) (string, time.Time, error)
	ValidateAccessToken(tokenString string) (*models.CustomClaims, error)
	ExtractTokenFromHeader(authHeader string) (string, error)
}

type AuditLoggerInterface interface {
	LogTransactionCreated(ctx context.Context, transaction *models.Transaction)
	LogTransactionsImported(ctx context.Context, userID uuid.UUID, count int, total decimal.Decimal)
	LogTransactionUpdated(ctx context.Context, transactionID, userID uuid.UUID, fields []string)
	LogOwnershipViolation(ctx context.Context, transactionID, userID uuid.UUID, operation string)
	LogReportGenerated(ctx context.Context, userID uuid.UUID, year int, month time.Month, durationMs int64)
	LogReportFailed(ctx context.Context, userID uuid.UUID, errorMsg string, durationMs int64)
}
