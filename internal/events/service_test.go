package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"fincal/internal/calendar"
	"fincal/internal/calendar/memory"
	"fincal/internal/codec"
	"fincal/internal/core"
	applog "fincal/internal/log"
	"fincal/internal/storage"
	"fincal/internal/store"
)

type recordingPublisher struct {
	mu   sync.Mutex
	ops  []string
	fail bool
}

func (p *recordingPublisher) PublishEventSync(_ context.Context, id, op string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ops = append(p.ops, op+":"+id)
	if p.fail {
		return errors.New("broker down")
	}
	return nil
}

func fixedClock(d core.Date) func() time.Time {
	return func() time.Time { return d.Time().Add(12 * time.Hour) }
}

func expense(title string, d core.Date, cents int64, category string) core.Event {
	return core.Event{Title: title, Date: d, Kind: core.KindExpense, Amount: core.Cents(cents), Category: category}
}

func TestLocal_CreateListPublishes(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	s := NewLocal(store.NewLocal(storage.NewMemoryBlob()), WithPublisher(pub))

	e, err := s.Create(ctx, expense("Lunch", core.NewDate(2024, 3, 5), 1200, ""))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.ID == "" || e.Category != core.DefaultCategory || e.Currency != core.DefaultCurrency {
		t.Fatalf("expected id and defaults, got %+v", e)
	}
	if _, err := s.Update(ctx, e.ID, expense("Dinner", core.NewDate(2024, 3, 6), 3000, "Food")); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.List(ctx, core.NewDate(2024, 3, 1), core.NewDate(2024, 4, 1))
	if err != nil || len(got) != 1 || got[0].Title != "Dinner" {
		t.Fatalf("unexpected list %+v (err=%v)", got, err)
	}
	if err := s.Delete(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	want := []string{"upsert:" + e.ID, "upsert:" + e.ID, "delete:" + e.ID}
	if len(pub.ops) != len(want) {
		t.Fatalf("published %v, want %v", pub.ops, want)
	}
	for i := range want {
		if pub.ops[i] != want[i] {
			t.Fatalf("published %v, want %v", pub.ops, want)
		}
	}
}

func TestLocal_UpdateUnknownIDIsIgnored(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	local := store.NewLocal(storage.NewMemoryBlob())
	s := NewLocal(local, WithPublisher(pub))

	got, err := s.Update(ctx, "missing", expense("Ghost", core.NewDate(2024, 3, 6), 3000, "Food"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ID != "" || got.Title != "" {
		t.Fatalf("expected zero event for unknown id, got %+v", got)
	}
	if len(pub.ops) != 0 {
		t.Fatalf("nothing should be published, got %v", pub.ops)
	}
	if events, _ := local.List(ctx); len(events) != 0 {
		t.Fatalf("unknown id must not be stored, got %+v", events)
	}
}

func TestLocal_RejectsNegativeAmount(t *testing.T) {
	s := NewLocal(store.NewLocal(storage.NewMemoryBlob()))
	_, err := s.Create(context.Background(), expense("Refund", core.NewDate(2024, 3, 5), -5, "Food"))
	if !errors.Is(err, core.ErrInvalidAmount) || !IsValidation(err) {
		t.Fatalf("expected invalid amount validation error, got %v", err)
	}
}

func TestLocal_LogsThroughContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := applog.NewContext(context.Background(), applog.New(applog.Config{Output: &buf, Level: slog.LevelDebug}))
	s := NewLocal(store.NewLocal(storage.NewMemoryBlob()))

	e, err := s.Create(ctx, expense("Lunch", core.NewDate(2024, 3, 5), 1200, "Food"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Report(ctx, core.Period{Mode: core.ModeMonthly, Year: 2024, Month: 3}); err != nil {
		t.Fatalf("report: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"operation=create", "event_id=" + e.ID, "amount_cents=1200", "operation=report", "period_mode=monthly"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLocal_PublishFailureDoesNotFail(t *testing.T) {
	s := NewLocal(store.NewLocal(storage.NewMemoryBlob()), WithPublisher(&recordingPublisher{fail: true}))
	if _, err := s.Create(context.Background(), expense("Lunch", core.NewDate(2024, 3, 5), 100, "Food")); err != nil {
		t.Fatalf("publish errors must not fail the write: %v", err)
	}
}

func TestCreate_RejectsInvalid(t *testing.T) {
	s := NewLocal(store.NewLocal(storage.NewMemoryBlob()))
	cases := []core.Event{
		{Title: "Salary", Date: core.NewDate(2024, 3, 1), Kind: core.KindIncome},
		{Title: "", Date: core.NewDate(2024, 3, 1), Kind: core.KindNormal},
		{Title: "x", Date: core.NewDate(2024, 2, 30), Kind: core.KindNormal},
		{Title: "x", Date: core.NewDate(2024, 3, 1), Kind: "bonus"},
	}
	for _, e := range cases {
		if _, err := s.Create(context.Background(), e); !IsValidation(err) {
			t.Fatalf("expected validation error for %+v, got %v", e, err)
		}
	}
	if _, err := s.Create(context.Background(), cases[0]); !errors.Is(err, core.ErrMissingAmount) {
		t.Fatalf("expected ErrMissingAmount, got %v", err)
	}
}

func TestRemote_RoundTripThroughCodec(t *testing.T) {
	ctx := context.Background()
	remote := memory.New()
	s := NewRemote(remote, codec.New())

	created, err := s.Create(ctx, core.Event{Title: "Coffee", Date: core.NewDate(2024, 3, 5), Kind: core.KindExpense, Amount: core.Cents(5050), Category: "Food"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Amount.Cents != 5050 || created.Category != "Food" {
		t.Fatalf("unexpected created event %+v", created)
	}
	raws, _ := remote.List(ctx, core.NewDate(2024, 3, 1), core.NewDate(2024, 4, 1))
	if *raws[0].Summary != "$50.5 - Coffee" {
		t.Fatalf("unexpected remote summary %q", *raws[0].Summary)
	}

	updated, err := s.Update(ctx, created.ID, core.Event{Title: "Coffee", Date: core.NewDate(2024, 3, 6), Kind: core.KindExpense, Amount: core.Cents(600)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Date != core.NewDate(2024, 3, 6) || updated.Amount.Cents != 600 || updated.Category != core.DefaultCategory {
		t.Fatalf("unexpected updated event %+v", updated)
	}
	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if remote.Len() != 0 {
		t.Fatal("expected remote to be empty")
	}
}

func TestRemote_QuarantinesMalformed(t *testing.T) {
	ctx := context.Background()
	remote := memory.New()
	summary := "$9 - Taxi"
	remote.Seed(
		calendar.RawEntry{ID: "no-start", Summary: &summary},
		calendar.RawEntry{ID: "no-summary", Start: &calendar.RawTime{Date: "2024-03-02"}},
		calendar.NewRawEntry("ok", "$20 - Taxi", "Type: Expense", core.NewDate(2024, 3, 9)),
		calendar.NewRawEntry("odd", "$abc", "", core.NewDate(2024, 3, 10)),
	)
	s := NewRemote(remote, nil)
	got, err := s.List(ctx, core.NewDate(2024, 3, 1), core.NewDate(2024, 4, 1))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "ok" || got[1].ID != "odd" {
		t.Fatalf("expected malformed entries skipped, got %+v", got)
	}
	if got[1].Amount.Cents != 0 || got[1].Kind != core.KindExpense {
		t.Fatalf("malformed summary should decode as zero expense: %+v", got[1])
	}
}

func TestReport_Monthly(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(store.NewLocal(storage.NewMemoryBlob()), WithClock(fixedClock(core.NewDate(2024, 3, 15))))
	seed := []core.Event{
		{Title: "Salary", Date: core.NewDate(2024, 3, 1), Kind: core.KindIncome, Amount: core.Cents(100000), Category: "Salary"},
		expense("Rent", core.NewDate(2024, 3, 1), 50000, "Housing"),
		expense("Groceries", core.NewDate(2024, 3, 10), 12000, "Food"),
		expense("Dinner", core.NewDate(2024, 3, 20), 3000, "Food"),
		{Title: "Dentist", Date: core.NewDate(2024, 3, 25), Kind: core.KindNormal},
		expense("April rent", core.NewDate(2024, 4, 1), 50000, "Housing"),
	}
	for _, e := range seed {
		if _, err := s.Create(ctx, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	r, err := s.Report(ctx, core.MonthlyPeriod(2024, 3))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if r.Stats.TotalIncome.Cents != 100000 || r.Stats.TotalExpenses.Cents != 65000 || r.Stats.Balance.Cents != 35000 {
		t.Fatalf("unexpected totals: %+v", r.Stats)
	}
	if len(r.ExpenseBreakdown) != 2 || r.ExpenseBreakdown[0].Name != "Housing" {
		t.Fatalf("unexpected breakdown: %+v", r.ExpenseBreakdown)
	}
	if len(r.Stats.Trend) != 31 {
		t.Fatalf("expected a bucket per day, got %d", len(r.Stats.Trend))
	}
	if len(r.Daily) != 3 || r.Daily[0].Date != core.NewDate(2024, 3, 20) {
		t.Fatalf("unexpected daily stats: %+v", r.Daily)
	}
	if len(r.Recent) != 4 || r.Recent[0].Title != "Dinner" {
		t.Fatalf("unexpected recent: %+v", r.Recent)
	}
	if len(r.Upcoming) != 2 || r.Upcoming[0].Title != "Dinner" || r.Upcoming[1].Title != "Dentist" {
		t.Fatalf("unexpected upcoming: %+v", r.Upcoming)
	}
}

func TestReport_InvalidPeriod(t *testing.T) {
	s := NewLocal(store.NewLocal(nil))
	if _, err := s.Report(context.Background(), core.MonthlyPeriod(2024, 13)); err == nil {
		t.Fatal("expected error for month 13")
	}
}
