package services

import (
	"context"
	"log/slog"
	"time"

	"expense-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuditLogger writes one structured line per state change or report, keyed
// by event_type and carrying the request's trace id as correlation_id.
type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) AuditLoggerInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger}
}

func (al *AuditLogger) record(ctx context.Context, level slog.Level, msg, eventType string, userID uuid.UUID, attrs ...slog.Attr) {
	attrs = append(attrs,
		slog.String("event_type", eventType),
		slog.String("user_id", userID.String()),
		slog.Time("timestamp", time.Now().UTC()),
		slog.String("correlation_id", TraceIDFromContext(ctx)),
	)
	al.logger.LogAttrs(ctx, level, msg, attrs...)
}

func (al *AuditLogger) LogTransactionCreated(ctx context.Context, t *models.Transaction) {
	al.record(ctx, slog.LevelInfo, "transaction created", "transaction_created", t.UserID,
		slog.String("transaction_id", t.ID.String()),
		slog.String("amount", t.Amount.String()),
		slog.String("category", t.Category),
		slog.String("source", t.Source),
	)
}

func (al *AuditLogger) LogTransactionsImported(ctx context.Context, userID uuid.UUID, count int, total decimal.Decimal) {
	al.record(ctx, slog.LevelInfo, "transactions imported", "transactions_imported", userID,
		slog.Int("count", count),
		slog.String("total_amount", total.String()),
	)
}

func (al *AuditLogger) LogTransactionUpdated(ctx context.Context, transactionID, userID uuid.UUID, fields []string) {
	al.record(ctx, slog.LevelInfo, "transaction updated", "transaction_updated", userID,
		slog.String("transaction_id", transactionID.String()),
		slog.Any("fields", fields),
	)
}

// LogOwnershipViolation is a warning: a user tried to touch someone else's transaction
func (al *AuditLogger) LogOwnershipViolation(ctx context.Context, transactionID, userID uuid.UUID, operation string) {
	al.record(ctx, slog.LevelWarn, "transaction ownership violation", "ownership_violation", userID,
		slog.String("transaction_id", transactionID.String()),
		slog.String("operation", operation),
	)
}

func (al *AuditLogger) LogReportGenerated(ctx context.Context, userID uuid.UUID, year int, month time.Month, durationMs int64) {
	al.record(ctx, slog.LevelInfo, "monthly report generated", "report_generated", userID,
		slog.Int("year", year),
		slog.Int("month", int(month)),
		slog.Int64("duration_ms", durationMs),
	)
}

func (al *AuditLogger) LogReportFailed(ctx context.Context, userID uuid.UUID, errorMsg string, durationMs int64) {
	al.record(ctx, slog.LevelWarn, "monthly report failed", "report_failed", userID,
		slog.String("error", errorMsg),
		slog.Int64("duration_ms", durationMs),
	)
}
