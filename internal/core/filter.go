package core

import (
	"errors"
	"fmt"
)

const (
	ModeMonthly Mode = "monthly"
	ModeAnnual  Mode = "annual"
)

type (
	// Mode selects the reporting window.
	Mode string

	// Period is a reporting window. Month is 1-12 and is ignored in
	// annual mode.
	Period struct {
		Mode  Mode
		Year  int
		Month int
	}
)

var ErrInvalidMode = errors.New("invalid period mode")

// MonthlyPeriod returns the period covering one calendar month.
func MonthlyPeriod(year, month int) Period {
	return Period{Mode: ModeMonthly, Year: year, Month: month}
}

// AnnualPeriod returns the period covering one calendar year.
func AnnualPeriod(year int) Period {
	return Period{Mode: ModeAnnual, Year: year}
}

func (p Period) Validate() error {
	switch p.Mode {
	case ModeMonthly:
		if p.Month < 1 || p.Month > 12 {
			return fmt.Errorf("%w: %d", ErrInvalidMonth, p.Month)
		}
	case ModeAnnual:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, p.Mode)
	}
	if p.Year < 1 || p.Year > 9999 {
		return fmt.Errorf("invalid year: %d", p.Year)
	}
	return nil
}

// Range returns the first day of the period and the first day after it.
func (p Period) Range() (start, end Date) {
	if p.Mode == ModeAnnual {
		return NewDate(p.Year, 1, 1), NewDate(p.Year+1, 1, 1)
	}
	start = NewDate(p.Year, p.Month, 1)
	if p.Month == 12 {
		return start, NewDate(p.Year+1, 1, 1)
	}
	return start, NewDate(p.Year, p.Month+1, 1)
}

// Contains reports whether d falls inside the period, by calendar
// components only.
func (p Period) Contains(d Date) bool {
	if d.Year != p.Year {
		return false
	}
	if p.Mode == ModeMonthly {
		return d.Month == p.Month
	}
	return true
}

// FilterByPeriod keeps the events dated inside p, preserving order.
func FilterByPeriod(events []Event, p Period) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if p.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// FilterByMonth keeps the events dated in the given year and month (1-12).
func FilterByMonth(events []Event, year, month int) []Event {
	return FilterByPeriod(events, MonthlyPeriod(year, month))
}
