package analytics

import (
	"time"

	"expense-tracker/internal/models"

	"github.com/shopspring/decimal"
)

// BucketizeDaily sums amounts per day of month. Index i holds day i+1.
// Points whose day (in loc) is outside [1, daysInMonth] are dropped.
func BucketizeDaily(points []models.DailyAmount, daysInMonth int, loc *time.Location) []decimal.Decimal {
	if daysInMonth <= 0 {
		return []decimal.Decimal{}
	}
	if loc == nil {
		loc = time.UTC
	}

	buckets := make([]decimal.Decimal, daysInMonth)
	for i := range buckets {
		buckets[i] = decimal.Zero
	}

	for _, p := range points {
		day := p.Date.In(loc).Day()
		if day < 1 || day > daysInMonth {
			continue
		}
		buckets[day-1] = buckets[day-1].Add(p.Amount)
	}

	return buckets
}
