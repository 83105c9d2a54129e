package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateRange is an inclusive [Start, End] interval of instants
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies inside the range, both ends included
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// CategoryAmount is the summed spend of one category
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// DailyAmount is the (date, amount) projection of a transaction
type DailyAmount struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// Trend describes month-over-month change in spend.
// IsPositive is true when spending did not go up.
type Trend struct {
	Value      decimal.Decimal `json:"value"`
	IsIncrease bool            `json:"isIncrease"`
	IsPositive bool            `json:"isPositive"`
}

// MonthlyReport is the analytics summary for one calendar month
type MonthlyReport struct {
	Year              int
	Month             time.Month
	TotalSpent        decimal.Decimal
	PrevTotalSpent    decimal.Decimal
	Trend             Trend
	CategoryBreakdown []CategoryAmount
	DailyStats        []decimal.Decimal
}

// MonthTotal is the summed spend of one calendar month
type MonthTotal struct {
	Year  int
	Month time.Month
	Total decimal.Decimal
}

// SpendingTrends is the multi-month view: one total per month, oldest first,
// and the category split over the same window
type SpendingTrends struct {
	Months        []MonthTotal
	CategorySplit []CategoryAmount
	Total         decimal.Decimal
}
