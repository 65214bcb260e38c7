package inventory

import (
	"fmt"
	"time"

	"github.com/shopkeeper/backend/internal/domain/shared"
)

// Period is a half-open time range [Start, End) used to scope waste and valuation
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod creates a period, requiring End after Start
func NewPeriod(start, end time.Time) (Period, error) {
	if !end.After(start) {
		return Period{}, shared.NewValidationError("Period end must be after period start")
	}
	return Period{Start: start, End: end}, nil
}

// MonthPeriod returns the calendar month containing year/month in loc
func MonthPeriod(year int, month time.Month, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Period{Start: start, End: start.AddDate(0, 1, 0)}
}

// WeekPeriod returns the Monday-based week containing t
func WeekPeriod(t time.Time) Period {
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	start := day.AddDate(0, 0, -offset)
	return Period{Start: start, End: start.AddDate(0, 0, 7)}
}

// ParsePeriod parses "YYYY-MM" into a UTC month period
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, shared.NewValidationError(fmt.Sprintf("Invalid period %q, expected YYYY-MM", s))
	}
	return MonthPeriod(t.Year(), t.Month(), time.UTC), nil
}

// Contains reports whether t falls inside the period
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Previous returns the period of equal length immediately before p
func (p Period) Previous() Period {
	if p.Start.Day() == 1 && p.End.Equal(p.Start.AddDate(0, 1, 0)) {
		start := p.Start.AddDate(0, -1, 0)
		return Period{Start: start, End: p.Start}
	}
	d := p.End.Sub(p.Start)
	return Period{Start: p.Start.Add(-d), End: p.Start}
}

// Label returns a compact label, "2026-10" for calendar months
func (p Period) Label() string {
	if p.Start.Day() == 1 && p.End.Equal(p.Start.AddDate(0, 1, 0)) {
		return p.Start.Format("2006-01")
	}
	return p.Start.Format("2006-01-02") + "/" + p.End.Format("2006-01-02")
}

// IsZero reports an unset period
func (p Period) IsZero() bool {
	return p.Start.IsZero() && p.End.IsZero()
}
