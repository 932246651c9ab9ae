package core

import "testing"

func TestSortedCategories(t *testing.T) {
	rows := SortedCategories(map[string]Money{
		"Food": {Cents: 300}, "Rent": {Cents: 600}, "Bar": {Cents: 300}, "Misc": {Cents: 0},
	})
	names := []string{"Rent", "Bar", "Food", "Misc"}
	for i, n := range names {
		if rows[i].Name != n {
			t.Fatalf("position %d: expected %s, got %s", i, n, rows[i].Name)
		}
	}
	if rows[0].Percent != 50 {
		t.Fatalf("expected 50%%, got %v", rows[0].Percent)
	}
	if len(SortedCategories(nil)) != 0 {
		t.Fatal("expected empty breakdown")
	}
}

func TestDailyStatistics(t *testing.T) {
	events := []Event{
		{Kind: KindIncome, Amount: Cents(1000), Date: NewDate(2024, 3, 1)},
		{Kind: KindExpense, Amount: Cents(300), Date: NewDate(2024, 3, 1)},
		{Kind: KindExpense, Amount: Cents(200), Date: NewDate(2024, 3, 7)},
		{Kind: KindNormal, Date: NewDate(2024, 3, 9)},
	}
	days := DailyStatistics(events)
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].Date != NewDate(2024, 3, 7) || days[0].Balance.Cents != -200 {
		t.Fatalf("unexpected first day: %+v", days[0])
	}
	if days[1].Income.Cents != 1000 || days[1].Expenses.Cents != 300 || days[1].Balance.Cents != 700 {
		t.Fatalf("unexpected second day: %+v", days[1])
	}
}

func TestRecentTransactions(t *testing.T) {
	var events []Event
	for d := 1; d <= 12; d++ {
		events = append(events, Event{ID: string(rune('a' + d)), Kind: KindExpense, Amount: Cents(1), Date: NewDate(2024, 3, d)})
	}
	events = append(events, Event{ID: "normal", Kind: KindNormal, Date: NewDate(2024, 4, 1)})

	got := RecentTransactions(events, 10)
	if len(got) != 10 {
		t.Fatalf("expected 10, got %d", len(got))
	}
	if got[0].Date != NewDate(2024, 3, 12) || got[9].Date != NewDate(2024, 3, 3) {
		t.Fatalf("unexpected order: first=%v last=%v", got[0].Date, got[9].Date)
	}
}

func TestUpcomingEvents(t *testing.T) {
	today := NewDate(2024, 3, 10)
	events := []Event{
		{ID: "past", Date: NewDate(2024, 3, 9)},
		{ID: "today", Date: today},
		{ID: "later", Date: NewDate(2024, 4, 1)},
		{ID: "soon", Date: NewDate(2024, 3, 11)},
	}
	got := UpcomingEvents(events, today)
	if len(got) != 2 || got[0].ID != "soon" || got[1].ID != "later" {
		t.Fatalf("unexpected upcoming: %+v", got)
	}
}
