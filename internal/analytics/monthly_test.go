package analytics

import (
	"testing"
	"time"

	"expense-tracker/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spanAt(t *testing.T, now time.Time, loc *time.Location, count *int) MonthSpan {
	t.Helper()
	span, err := NewResolver(ClockFunc(func() time.Time { return now }), loc).ResolveSpan(count)
	require.NoError(t, err)
	return span
}

func spend(at time.Time, value string) models.DailyAmount {
	return models.DailyAmount{Date: at, Amount: decimal.RequireFromString(value)}
}

func TestResolveSpan_DefaultsToTwelveMonthsAcrossYearBoundary(t *testing.T) {
	span := spanAt(t, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC), time.UTC, nil)

	require.Len(t, span.Months, DefaultTrendMonths)
	assert.Equal(t, 2023, span.Months[0].Year)
	assert.Equal(t, time.April, span.Months[0].Month)
	assert.Equal(t, 2024, span.Months[11].Year)
	assert.Equal(t, time.March, span.Months[11].Month)
	assert.Equal(t, time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), span.Window.Start)
	assert.Equal(t, MonthWindow(2024, time.March, time.UTC).End, span.Window.End)
}

func TestResolveSpan_SingleMonthIsCurrentMonth(t *testing.T) {
	one := 1
	span := spanAt(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), time.UTC, &one)

	require.Len(t, span.Months, 1)
	assert.Equal(t, MonthWindow(2024, time.February, time.UTC), span.Window)
}

func TestResolveSpan_RejectsCountOutOfRange(t *testing.T) {
	resolver := NewResolver(nil, nil)

	for _, n := range []int{0, -3, MaxTrendMonths + 1} {
		n := n
		_, err := resolver.ResolveSpan(&n)
		assert.ErrorIs(t, err, ErrInvalidMonthCount, "count %d", n)
	}
}

func TestResolveSpan_UsesLocationMonth(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC on 31 March is already 1 April in IST
	now := time.Date(2024, 3, 31, 20, 0, 0, 0, time.UTC)
	three := 3

	span := spanAt(t, now, ist, &three)

	require.Len(t, span.Months, 3)
	assert.Equal(t, time.February, span.Months[0].Month)
	assert.Equal(t, time.April, span.Months[2].Month)
}

func TestBucketizeMonthly(t *testing.T) {
	four := 4
	span := spanAt(t, time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC), time.UTC, &four)

	totals := BucketizeMonthly([]models.DailyAmount{
		spend(time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC), "10.10"),
		spend(time.Date(2023, 11, 30, 23, 59, 59, 0, time.UTC), "0.90"),
		spend(time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC), "7"),
		spend(time.Date(2023, 10, 31, 23, 59, 59, 0, time.UTC), "1000"),
		spend(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "1000"),
	}, span)

	require.Len(t, totals, 4)
	assert.Equal(t, "11", totals[0].Total.String())
	assert.True(t, totals[1].Total.IsZero(), "december has no spend")
	assert.True(t, totals[2].Total.IsZero(), "january has no spend")
	assert.Equal(t, "7", totals[3].Total.String())
	assert.Equal(t, time.February, totals[3].Month)
}

func TestBucketizeMonthly_DoesNotMutateSpan(t *testing.T) {
	two := 2
	span := spanAt(t, time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC), time.UTC, &two)

	BucketizeMonthly([]models.DailyAmount{spend(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "5")}, span)

	for _, m := range span.Months {
		assert.True(t, m.Total.IsZero())
	}
}

func TestBucketizeMonthly_EmptySpan(t *testing.T) {
	totals := BucketizeMonthly([]models.DailyAmount{spend(time.Now(), "1")}, MonthSpan{})

	assert.NotNil(t, totals)
	assert.Empty(t, totals)
}
