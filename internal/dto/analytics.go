package dto

import (
	"fmt"

	"expense-tracker/internal/models"

	"github.com/shopspring/decimal"
)

// TrendResponse mirrors models.Trend with a one-decimal percentage
type TrendResponse struct {
	Value      string `json:"value"`
	IsIncrease bool   `json:"isIncrease"`
	IsPositive bool   `json:"isPositive"`
}

// CategoryAmountResponse is one row of the category breakdown
type CategoryAmountResponse struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

// DashboardStatsResponse is the body of GET /dashboard/stats
type DashboardStatsResponse struct {
	Month             int                      `json:"month"`
	Year              int                      `json:"year"`
	TotalSpent        string                   `json:"totalSpent"`
	PrevTotalSpent    string                   `json:"prevTotalSpent"`
	Trend             TrendResponse            `json:"trend"`
	CategoryBreakdown []CategoryAmountResponse `json:"categoryBreakdown"`
	DailyStats        []string                 `json:"dailyStats"`
}

// ToDashboardStatsResponse converts a monthly report into its wire form
func ToDashboardStatsResponse(report *models.MonthlyReport) DashboardStatsResponse {
	breakdown := make([]CategoryAmountResponse, 0, len(report.CategoryBreakdown))
	for _, entry := range report.CategoryBreakdown {
		breakdown = append(breakdown, CategoryAmountResponse{
			Category: entry.Category,
			Amount:   formatAmount(entry.Amount),
		})
	}

	daily := make([]string, 0, len(report.DailyStats))
	for _, amount := range report.DailyStats {
		daily = append(daily, formatAmount(amount))
	}

	return DashboardStatsResponse{
		Month:          int(report.Month),
		Year:           report.Year,
		TotalSpent:     formatAmount(report.TotalSpent),
		PrevTotalSpent: formatAmount(report.PrevTotalSpent),
		Trend: TrendResponse{
			Value:      report.Trend.Value.StringFixed(1),
			IsIncrease: report.Trend.IsIncrease,
			IsPositive: report.Trend.IsPositive,
		},
		CategoryBreakdown: breakdown,
		DailyStats:        daily,
	}
}

// MonthTotalResponse is one point of the monthly trend series
type MonthTotalResponse struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Label string `json:"label"`
	Total string `json:"total"`
}

// CategorySplitResponse is one slice of the category split, named for chart consumers
type CategorySplitResponse struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SpendingTrendsResponse is the body of GET /dashboard/trends
type SpendingTrendsResponse struct {
	Total         string                  `json:"total"`
	MonthlyTrend  []MonthTotalResponse    `json:"monthlyTrend"`
	CategorySplit []CategorySplitResponse `json:"categorySplit"`
}

func ToSpendingTrendsResponse(trends *models.SpendingTrends) SpendingTrendsResponse {
	monthly := make([]MonthTotalResponse, 0, len(trends.Months))
	for _, m := range trends.Months {
		monthly = append(monthly, MonthTotalResponse{
			Year:  m.Year,
			Month: int(m.Month),
			Label: fmt.Sprintf("%s %d", m.Month, m.Year),
			Total: formatAmount(m.Total),
		})
	}

	split := make([]CategorySplitResponse, 0, len(trends.CategorySplit))
	for _, entry := range trends.CategorySplit {
		split = append(split, CategorySplitResponse{
			Name:  entry.Category,
			Value: formatAmount(entry.Amount),
		})
	}

	return SpendingTrendsResponse{
		Total:         formatAmount(trends.Total),
		MonthlyTrend:  monthly,
		CategorySplit: split,
	}
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
