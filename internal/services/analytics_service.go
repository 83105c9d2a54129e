package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"expense-tracker/internal/analytics"
	"expense-tracker/internal/models"
	"expense-tracker/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// PeriodQuery selects the report month. A nil field means "not supplied";
// if either is nil both are taken from the service clock.
type PeriodQuery struct {
	Month *int
	Year  *int
}

// TrendQuery selects how many months, ending with the current one, the trend covers.
// A nil Months takes analytics.DefaultTrendMonths.
type TrendQuery struct {
	Months *int
}

type analyticsService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	resolver        *analytics.Resolver
	metrics         MetricsRecorderInterface
	auditLogger     AuditLoggerInterface
}

// NewAnalyticsService creates the monthly aggregation engine
func NewAnalyticsService(
	transactionRepo repositories.TransactionRepositoryInterface,
	resolver *analytics.Resolver,
	metrics MetricsRecorderInterface,
	auditLogger AuditLoggerInterface,
) AnalyticsServiceInterface {
	if resolver == nil {
		resolver = analytics.NewResolver(nil, nil)
	}
	return &analyticsService{
		transactionRepo: transactionRepo,
		resolver:        resolver,
		metrics:         metrics,
		auditLogger:     auditLogger,
	}
}

// GetMonthlyReport computes totals, trend, category breakdown and daily series for one month.
// The four store reads run concurrently; the first failure cancels the rest and no partial
// report is returned.
func (s *analyticsService) GetMonthlyReport(ctx context.Context, userID uuid.UUID, query PeriodQuery) (*models.MonthlyReport, error) {
	start := time.Now()

	period, err := s.resolver.Resolve(query.Month, query.Year)
	if err != nil {
		s.metrics.IncrementCounter(MetricReportFailed, map[string]string{"reason": "invalid_period"})
		return nil, err
	}

	var (
		currentTotal  decimal.Decimal
		previousTotal decimal.Decimal
		breakdown     []models.CategoryAmount
		points        []models.DailyAmount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.transactionRepo.SumAmount(gctx, userID, period.Current)
		if err != nil {
			return fmt.Errorf("failed to sum current month: %w", err)
		}
		currentTotal = total
		return nil
	})
	g.Go(func() error {
		total, err := s.transactionRepo.SumAmount(gctx, userID, period.Previous)
		if err != nil {
			return fmt.Errorf("failed to sum previous month: %w", err)
		}
		previousTotal = total
		return nil
	})
	g.Go(func() error {
		rows, err := s.transactionRepo.SumAmountByCategory(gctx, userID, period.Current)
		if err != nil {
			return fmt.Errorf("failed to group by category: %w", err)
		}
		breakdown = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.transactionRepo.ListAmountsByDate(gctx, userID, period.Current)
		if err != nil {
			return fmt.Errorf("failed to list daily amounts: %w", err)
		}
		points = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		duration := time.Since(start)
		s.metrics.IncrementCounter(MetricReportFailed, map[string]string{"reason": failureReason(err)})
		s.metrics.RecordProcessingTime(MetricReportDuration, duration)
		s.auditLogger.LogReportFailed(ctx, userID, err.Error(), duration.Milliseconds())
		return nil, err
	}

	if breakdown == nil {
		breakdown = []models.CategoryAmount{}
	}

	report := &models.MonthlyReport{
		Year:              period.Year,
		Month:             period.Month,
		TotalSpent:        currentTotal,
		PrevTotalSpent:    previousTotal,
		Trend:             analytics.CalculateTrend(currentTotal, previousTotal),
		CategoryBreakdown: breakdown,
		DailyStats:        analytics.BucketizeDaily(points, period.DaysInMonth(), period.Location),
	}

	duration := time.Since(start)
	s.metrics.IncrementCounter(MetricReportGenerated, nil)
	s.metrics.RecordProcessingTime(MetricReportDuration, duration)
	s.auditLogger.LogReportGenerated(ctx, userID, period.Year, period.Month, duration.Milliseconds())

	slog.Debug("monthly report computed",
		"user_id", userID,
		"year", period.Year,
		"month", int(period.Month),
		"total_spent", currentTotal.String(),
		"categories", len(breakdown),
	)

	return report, nil
}

// GetSpendingTrends computes one total per calendar month over the trailing span
// together with the category split of the same window, so both sum to Total.
func (s *analyticsService) GetSpendingTrends(ctx context.Context, userID uuid.UUID, query TrendQuery) (*models.SpendingTrends, error) {
	start := time.Now()

	span, err := s.resolver.ResolveSpan(query.Months)
	if err != nil {
		s.metrics.IncrementCounter(MetricTrendsFailed, map[string]string{"reason": "invalid_period"})
		return nil, err
	}

	var (
		split  []models.CategoryAmount
		points []models.DailyAmount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.transactionRepo.SumAmountByCategory(gctx, userID, span.Window)
		if err != nil {
			return fmt.Errorf("failed to group by category: %w", err)
		}
		split = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.transactionRepo.ListAmountsByDate(gctx, userID, span.Window)
		if err != nil {
			return fmt.Errorf("failed to list amounts: %w", err)
		}
		points = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		s.metrics.IncrementCounter(MetricTrendsFailed, map[string]string{"reason": failureReason(err)})
		s.metrics.RecordProcessingTime(MetricReportDuration, time.Since(start))
		slog.WarnContext(ctx, "spending trends failed", "user_id", userID, "error", err)
		return nil, err
	}

	if split == nil {
		split = []models.CategoryAmount{}
	}

	months := analytics.BucketizeMonthly(points, span)
	total := decimal.Zero
	for _, m := range months {
		total = total.Add(m.Total)
	}

	s.metrics.IncrementCounter(MetricTrendsGenerated, nil)
	s.metrics.RecordProcessingTime(MetricReportDuration, time.Since(start))

	slog.Debug("spending trends computed",
		"user_id", userID,
		"months", len(months),
		"total", total.String(),
		"categories", len(split),
	)

	return &models.SpendingTrends{
		Months:        months,
		CategorySplit: split,
		Total:         total,
	}, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "store"
	}
}
