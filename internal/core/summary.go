package core

import (
	"sort"
)

type (
	// CategoryShare is one row of a category breakdown.
	CategoryShare struct {
		Name    string
		Amount  Money
		Percent float64 // share of the breakdown total, 0-100
	}

	// DailyStat holds the financial activity of one day.
	DailyStat struct {
		Date     Date
		Income   Money
		Expenses Money
		Balance  Money
	}
)

// SortedCategories orders a category map by descending amount, ties by name.
func SortedCategories(byCategory map[string]Money) []CategoryShare {
	var total int64
	out := make([]CategoryShare, 0, len(byCategory))
	for name, amt := range byCategory {
		out = append(out, CategoryShare{Name: name, Amount: amt})
		total += amt.Cents
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	if total != 0 {
		for i := range out {
			out[i].Percent = float64(out[i].Amount.Cents) / float64(total) * 100
		}
	}
	return out
}

// DailyStatistics groups financial events by day, newest day first.
// Days with only normal events are left out.
func DailyStatistics(events []Event) []DailyStat {
	byDay := map[Date]*DailyStat{}
	for _, e := range events {
		if !e.Kind.IsFinancial() {
			continue
		}
		ds, ok := byDay[e.Date]
		if !ok {
			ds = &DailyStat{Date: e.Date}
			byDay[e.Date] = ds
		}
		if e.Kind == KindIncome {
			ds.Income = ds.Income.Add(e.AmountOrZero())
		} else {
			ds.Expenses = ds.Expenses.Add(e.AmountOrZero())
		}
	}
	out := make([]DailyStat, 0, len(byDay))
	for _, ds := range byDay {
		ds.Balance = ds.Income.Sub(ds.Expenses)
		out = append(out, *ds)
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Date.Before(out[i].Date) })
	return out
}

// RecentTransactions returns at most n financial events, newest first.
func RecentTransactions(events []Event, n int) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Kind.IsFinancial() {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[j].Date.Before(out[i].Date) })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// UpcomingEvents returns the events dated strictly after today, oldest first.
func UpcomingEvents(events []Event, today Date) []Event {
	var out []Event
	for _, e := range events {
		if today.Before(e.Date) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
