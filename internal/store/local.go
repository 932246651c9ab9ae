package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"fincal/internal/core"
)

// Patch holds the fields to overwrite on update. Nil fields are kept.
type Patch struct {
	Title         *string
	Description   *string
	Date          *core.Date
	Kind          *core.Kind
	Amount        *core.Money
	Category      *string
	PaymentMethod *string
	Currency      *string
}

// FullPatch overwrites every mutable field with the values of e.
func FullPatch(e core.Event) Patch {
	p := Patch{
		Title:         &e.Title,
		Description:   &e.Description,
		Date:          &e.Date,
		Kind:          &e.Kind,
		Category:      &e.Category,
		PaymentMethod: &e.PaymentMethod,
		Currency:      &e.Currency,
	}
	if e.Amount != nil {
		amt := *e.Amount
		p.Amount = &amt
	}
	return p
}

func (p Patch) apply(e core.Event) core.Event {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Kind != nil {
		e.Kind = *p.Kind
	}
	if p.Amount != nil {
		amt := *p.Amount
		e.Amount = &amt
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.PaymentMethod != nil {
		e.PaymentMethod = *p.PaymentMethod
	}
	if p.Currency != nil {
		e.Currency = *p.Currency
	}
	return e
}

// Local is the event store backed by a Blob. The full collection is
// rewritten on every mutation.
type Local struct {
	mu    sync.Mutex
	blob  Blob
	newID func() string
}

// NewLocal creates a store over blob. A nil blob behaves as unavailable.
func NewLocal(blob Blob) *Local {
	return &Local{blob: blob, newID: uuid.NewString}
}

// List returns all events in stored order.
func (l *Local) List(ctx context.Context) ([]core.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

// Add appends e, assigning an id when it has none. The stored event is
// returned. When storage is unavailable nothing is written.
func (l *Local) Add(ctx context.Context, e core.Event) (core.Event, error) {
	if e.ID == "" {
		e.ID = l.newID()
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	events, err := l.load(ctx)
	if err != nil {
		return core.Event{}, err
	}
	events = append(events, e)
	if err := l.save(ctx, events); err != nil {
		return core.Event{}, err
	}
	return e, nil
}

// Get returns the event with id.
func (l *Local) Get(ctx context.Context, id string) (core.Event, bool, error) {
	events, err := l.List(ctx)
	if err != nil {
		return core.Event{}, false, err
	}
	for _, e := range events {
		if e.ID == id {
			return e, true, nil
		}
	}
	return core.Event{}, false, nil
}

// Update merges patch onto the event with id and returns the stored
// result. Unknown ids are ignored and reported with ok false.
func (l *Local) Update(ctx context.Context, id string, patch Patch) (updated core.Event, ok bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	events, err := l.load(ctx)
	if err != nil {
		return core.Event{}, false, err
	}
	for i := range events {
		if events[i].ID == id {
			events[i] = patch.apply(events[i])
			if err := l.save(ctx, events); err != nil {
				return core.Event{}, false, err
			}
			return events[i], true, nil
		}
	}
	slog.DebugContext(ctx, "Update of unknown event ignored", "id", id)
	return core.Event{}, false, nil
}

// Delete removes the event with id. Unknown ids are ignored.
func (l *Local) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	events, err := l.load(ctx)
	if err != nil {
		return err
	}
	kept := events[:0]
	for _, e := range events {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(events) {
		slog.DebugContext(ctx, "Delete of unknown event ignored", "id", id)
		return nil
	}
	return l.save(ctx, kept)
}

// ListByMonth returns the events dated in year and month (1-12).
func (l *Local) ListByMonth(ctx context.Context, year, month int) ([]core.Event, error) {
	events, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	return core.FilterByMonth(events, year, month), nil
}

func (l *Local) load(ctx context.Context) ([]core.Event, error) {
	if l.blob == nil {
		return []core.Event{}, nil
	}
	data, err := l.blob.Read(ctx)
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnavailable):
		return []core.Event{}, nil
	case err != nil:
		return nil, fmt.Errorf("read events: %w", err)
	}
	if len(data) == 0 {
		return []core.Event{}, nil
	}
	var events []core.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

func (l *Local) save(ctx context.Context, events []core.Event) error {
	if l.blob == nil {
		return nil
	}
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	if err := l.blob.Write(ctx, data); err != nil {
		if errors.Is(err, ErrUnavailable) {
			slog.DebugContext(ctx, "Storage unavailable, write skipped", "events", len(events))
			return nil
		}
		return fmt.Errorf("write events: %w", err)
	}
	return nil
}
