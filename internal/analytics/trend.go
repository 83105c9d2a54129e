package analytics

import (
	"expense-tracker/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculateTrend compares two monthly totals. A previous total of zero
// (or less) yields a flat trend rather than an undefined percentage.
// Spending less than the prior month counts as positive.
func CalculateTrend(current, previous decimal.Decimal) models.Trend {
	if !previous.IsPositive() {
		return models.Trend{
			Value:      decimal.Zero,
			IsIncrease: false,
			IsPositive: true,
		}
	}

	raw := current.Sub(previous).Mul(hundred).Div(previous)
	isIncrease := raw.IsPositive()

	return models.Trend{
		Value:      raw.Abs().Round(1),
		IsIncrease: isIncrease,
		IsPositive: !isIncrease,
	}
}
