package memory

import (
	"context"
	"errors"
	"testing"

	"fincal/internal/calendar"
	"fincal/internal/core"
)

func TestRemote_CRUD(t *testing.T) {
	ctx := context.Background()
	r := New()
	a, err := r.Create(ctx, "$5 - Taco", "Type: Expense", core.NewDate(2024, 3, 10))
	if err != nil || a.ID == "" {
		t.Fatalf("create: id=%q err=%v", a.ID, err)
	}
	b, _ := r.Create(ctx, "Meeting", "", core.NewDate(2024, 3, 2))

	if _, err := r.Update(ctx, a.ID, "$6 - Taco", "Type: Expense", core.NewDate(2024, 3, 11)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := r.Update(ctx, "nope", "x", "", core.NewDate(2024, 3, 1)); !errors.Is(err, calendar.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	got, _ := r.List(ctx, core.NewDate(2024, 3, 1), core.NewDate(2024, 4, 1))
	if len(got) != 2 || got[0].ID != b.ID || *got[1].Summary != "$6 - Taco" {
		t.Fatalf("unexpected list: %+v", got)
	}

	if err := r.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := r.Delete(ctx, a.ID); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", r.Len())
	}
}

func TestRemote_ListRange(t *testing.T) {
	ctx := context.Background()
	r := New()
	for _, d := range []core.Date{core.NewDate(2024, 2, 29), core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31), core.NewDate(2024, 4, 1)} {
		_, _ = r.Create(ctx, d.String(), "", d)
	}
	got, _ := r.List(ctx, core.NewDate(2024, 3, 1), core.NewDate(2024, 4, 1))
	if len(got) != 2 || *got[0].Summary != "2024-03-01" || *got[1].Summary != "2024-03-31" {
		t.Fatalf("range must be [start, end): %+v", got)
	}
}

func TestRemote_SeedMalformed(t *testing.T) {
	ctx := context.Background()
	r := New()
	r.Seed(calendar.RawEntry{ID: "broken"})
	got, _ := r.List(ctx, core.NewDate(2024, 3, 1), core.NewDate(2024, 4, 1))
	if len(got) != 1 || got[0].ID != "broken" {
		t.Fatalf("malformed entries should be listed: %+v", got)
	}
	if _, err := calendar.ParseEntry(got[0]); !errors.Is(err, calendar.ErrMalformedEntry) {
		t.Fatalf("expected malformed, got %v", err)
	}
}
