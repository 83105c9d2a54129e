package analytics

import (
	"errors"
	"time"

	"expense-tracker/internal/models"
)

const (
	MinYear = 1
	MaxYear = 9999
)

var (
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
	ErrInvalidYear  = errors.New("year must be between 1 and 9999")
)

// Clock supplies the current instant to the resolver
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the wall clock
var SystemClock Clock = ClockFunc(time.Now)

// Period is a resolved target month together with the month before it
type Period struct {
	Year     int
	Month    time.Month
	Current  models.DateRange
	Previous models.DateRange
	Location *time.Location
}

// DaysInMonth returns the length of the target month
func (p Period) DaysInMonth() int {
	return DaysIn(p.Year, p.Month, p.Location)
}

// Resolver turns an optional month/year pair into a Period
type Resolver struct {
	clock    Clock
	location *time.Location
}

func NewResolver(clock Clock, location *time.Location) *Resolver {
	if clock == nil {
		clock = SystemClock
	}
	if location == nil {
		location = time.UTC
	}
	return &Resolver{
		clock:    clock,
		location: location,
	}
}

// Location returns the zone calendar months are cut in
func (r *Resolver) Location() *time.Location {
	return r.location
}

// Resolve validates the requested month and computes both windows.
// When either value is absent both are taken from the clock.
func (r *Resolver) Resolve(month, year *int) (Period, error) {
	var y int
	var m time.Month

	if month == nil || year == nil {
		now := r.clock.Now().In(r.location)
		y, m = now.Year(), now.Month()
	} else {
		if *month < 1 || *month > 12 {
			return Period{}, ErrInvalidMonth
		}
		if *year < MinYear || *year > MaxYear {
			return Period{}, ErrInvalidYear
		}
		y, m = *year, time.Month(*month)
	}

	prevYear, prevMonth := y, m-1
	if m == time.January {
		prevYear, prevMonth = y-1, time.December
	}

	return Period{
		Year:     y,
		Month:    m,
		Current:  MonthWindow(y, m, r.location),
		Previous: MonthWindow(prevYear, prevMonth, r.location),
		Location: r.location,
	}, nil
}

// MonthWindow spans day 1 00:00:00.000 through the last day 23:59:59.999
func MonthWindow(year int, month time.Month, loc *time.Location) models.DateRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return models.DateRange{
		Start: start,
		End:   start.AddDate(0, 1, 0).Add(-time.Millisecond),
	}
}

// DaysIn returns the number of calendar days in the given month
func DaysIn(year int, month time.Month, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
