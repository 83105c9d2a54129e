package analytics

import (
	"fmt"
	"time"

	"expense-tracker/internal/models"

	"github.com/shopspring/decimal"
)

const (
	DefaultTrendMonths = 12
	MaxTrendMonths     = 60
)

var ErrInvalidMonthCount = fmt.Errorf("months must be between 1 and %d", MaxTrendMonths)

// MonthSpan is a run of consecutive calendar months ending with the current one
type MonthSpan struct {
	// Months is oldest first; each entry carries only Year and Month
	Months   []models.MonthTotal
	Window   models.DateRange
	Location *time.Location
}

// ResolveSpan returns the count months ending with the clock's month.
// A nil count takes DefaultTrendMonths.
func (r *Resolver) ResolveSpan(count *int) (MonthSpan, error) {
	n := DefaultTrendMonths
	if count != nil {
		n = *count
	}
	if n < 1 || n > MaxTrendMonths {
		return MonthSpan{}, ErrInvalidMonthCount
	}

	now := r.clock.Now().In(r.location)
	last := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, r.location)
	first := last.AddDate(0, -(n - 1), 0)

	months := make([]models.MonthTotal, 0, n)
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		months = append(months, models.MonthTotal{Year: m.Year(), Month: m.Month(), Total: decimal.Zero})
	}

	return MonthSpan{
		Months: months,
		Window: models.DateRange{
			Start: first,
			End:   MonthWindow(last.Year(), last.Month(), r.location).End,
		},
		Location: r.location,
	}, nil
}

// BucketizeMonthly sums amounts per calendar month of span (in its location).
// Months without spend are kept with a zero total and points outside the
// span window are dropped.
func BucketizeMonthly(points []models.DailyAmount, span MonthSpan) []models.MonthTotal {
	if len(span.Months) == 0 {
		return []models.MonthTotal{}
	}
	loc := span.Location
	if loc == nil {
		loc = time.UTC
	}

	totals := make([]models.MonthTotal, len(span.Months))
	copy(totals, span.Months)
	for i := range totals {
		totals[i].Total = decimal.Zero
	}

	origin := monthIndex(totals[0].Year, totals[0].Month)
	for _, p := range points {
		if !span.Window.Contains(p.Date) {
			continue
		}
		local := p.Date.In(loc)
		i := monthIndex(local.Year(), local.Month()) - origin
		if i < 0 || i >= len(totals) {
			continue
		}
		totals[i].Total = totals[i].Total.Add(p.Amount)
	}

	return totals
}

func monthIndex(year int, month time.Month) int {
	return year*12 + int(month) - 1
}
