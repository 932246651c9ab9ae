package core

import "strconv"

type (
	// FinancialStats is a snapshot derived from an event list. It is
	// recomputed on every query and never persisted.
	FinancialStats struct {
		TotalIncome        Money
		TotalExpenses      Money
		Balance            Money
		IncomeByCategory   map[string]Money
		ExpensesByCategory map[string]Money
		Trend              []TrendBucket
	}

	// TrendBucket is one day (monthly mode) or one month (annual mode).
	TrendBucket struct {
		Label    string
		Income   Money
		Expenses Money
	}

	// Locale names the months in trend labels.
	Locale struct {
		Name        string
		MonthsShort [12]string
	}
)

var (
	LocaleEnglish = Locale{
		Name:        "en",
		MonthsShort: [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	}
	LocaleSpanish = Locale{
		Name:        "es",
		MonthsShort: [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"},
	}
)

// LocaleByName returns the locale for "en" or "es", falling back to English.
func LocaleByName(name string) Locale {
	if name == LocaleSpanish.Name {
		return LocaleSpanish
	}
	return LocaleEnglish
}

// Aggregate computes totals, category sums and the trend series for p.
// Events outside p still count toward totals and categories: callers pass
// the output of FilterByPeriod. The trend only ever looks inside p, and it
// always has DaysIn(year, month) or 12 buckets.
func Aggregate(events []Event, p Period, loc Locale) FinancialStats {
	stats := FinancialStats{
		IncomeByCategory:   map[string]Money{},
		ExpensesByCategory: map[string]Money{},
	}
	for _, e := range events {
		amt := e.AmountOrZero()
		switch e.Kind {
		case KindIncome:
			stats.TotalIncome = stats.TotalIncome.Add(amt)
			cat := categoryOf(e)
			stats.IncomeByCategory[cat] = stats.IncomeByCategory[cat].Add(amt)
		case KindExpense:
			stats.TotalExpenses = stats.TotalExpenses.Add(amt)
			cat := categoryOf(e)
			stats.ExpensesByCategory[cat] = stats.ExpensesByCategory[cat].Add(amt)
		}
	}
	stats.Balance = stats.TotalIncome.Sub(stats.TotalExpenses)
	stats.Trend = trend(events, p, loc)
	return stats
}

func trend(events []Event, p Period, loc Locale) []TrendBucket {
	var buckets []TrendBucket
	var index func(Date) (int, bool)

	if p.Mode == ModeAnnual {
		buckets = make([]TrendBucket, 12)
		for m := range buckets {
			buckets[m].Label = loc.MonthsShort[m]
		}
		index = func(d Date) (int, bool) {
			return d.Month - 1, d.Year == p.Year && d.Month >= 1 && d.Month <= 12
		}
	} else {
		days := DaysIn(p.Year, p.Month)
		buckets = make([]TrendBucket, days)
		for d := range buckets {
			buckets[d].Label = strconv.Itoa(d + 1)
		}
		index = func(d Date) (int, bool) {
			return d.Day - 1, d.Year == p.Year && d.Month == p.Month && d.Day >= 1 && d.Day <= days
		}
	}

	for _, e := range events {
		i, ok := index(e.Date)
		if !ok {
			continue
		}
		switch e.Kind {
		case KindIncome:
			buckets[i].Income = buckets[i].Income.Add(e.AmountOrZero())
		case KindExpense:
			buckets[i].Expenses = buckets[i].Expenses.Add(e.AmountOrZero())
		}
	}
	return buckets
}

func categoryOf(e Event) string {
	if e.Category == "" {
		return DefaultCategory
	}
	return e.Category
}
