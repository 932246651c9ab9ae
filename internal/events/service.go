// Package events orchestrates event operations over the active backend:
// the local store, or a remote calendar read and written through the codec.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fincal/internal/calendar"
	"fincal/internal/codec"
	"fincal/internal/core"
	applog "fincal/internal/log"
	"fincal/internal/store"
)

// Sync operations published after local mutations.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// RecentLimit is the number of transactions listed in a report.
const RecentLimit = 10

// Publisher announces local changes so they can be mirrored remotely.
type Publisher interface {
	PublishEventSync(ctx context.Context, eventID, operation string) error
}

type (
	// Report is everything shown for one period.
	Report struct {
		Period           core.Period
		Stats            core.FinancialStats
		IncomeBreakdown  []core.CategoryShare
		ExpenseBreakdown []core.CategoryShare
		Daily            []core.DailyStat
		Recent           []core.Event
		Upcoming         []core.Event
	}

	// Service serves one backend. Exactly one of local and remote is set.
	Service struct {
		local     *store.Local
		remote    calendar.Remote
		codec     *codec.Codec
		publisher Publisher
		defaults  core.Defaults
		locale    core.Locale
		now       func() time.Time
	}

	Option func(*Service)
)

// WithPublisher publishes a sync message after every local mutation.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLocale selects the trend labels.
func WithLocale(loc core.Locale) Option {
	return func(s *Service) { s.locale = loc }
}

// WithDefaults sets the values filled into incomplete financial events.
func WithDefaults(d core.Defaults) Option {
	return func(s *Service) { s.defaults = d }
}

// WithClock overrides time.Now, used to find upcoming events.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewLocal serves events from the local store.
func NewLocal(local *store.Local, opts ...Option) *Service {
	s := &Service{local: local, defaults: core.DefaultDefaults(), locale: core.LocaleEnglish, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRemote serves events from a remote calendar. Nil c uses codec.New().
func NewRemote(remote calendar.Remote, c *codec.Codec, opts ...Option) *Service {
	if c == nil {
		c = codec.New()
	}
	s := &Service{remote: remote, codec: c, defaults: c.Defaults(), locale: core.LocaleEnglish, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsRemote reports whether the service reads a remote calendar.
func (s *Service) IsRemote() bool {
	return s.remote != nil
}

// List returns the events dated in [start, end).
func (s *Service) List(ctx context.Context, start, end core.Date) ([]core.Event, error) {
	if s.remote == nil {
		all, err := s.local.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list local events: %w", err)
		}
		out := make([]core.Event, 0, len(all))
		for _, e := range all {
			if !e.Date.Before(start) && e.Date.Before(end) {
				out = append(out, e)
			}
		}
		return out, nil
	}

	raws, err := s.remote.List(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list remote events: %w", err)
	}
	out := make([]core.Event, 0, len(raws))
	for _, raw := range raws {
		entry, err := calendar.ParseEntry(raw)
		if err != nil {
			applog.FromContext(ctx).WithFields(applog.NewFields().WithOperation(applog.OpList).WithError(err)).
				WarnContext(ctx, "Skipping malformed calendar entry", applog.FieldEventID, raw.ID)
			continue
		}
		if codec.IsMalformedSummary(entry.Summary) {
			applog.FromContext(ctx).DebugContext(ctx, "Financial summary without amount, decoded as zero",
				applog.FieldOperation, applog.OpList,
				applog.FieldEventID, entry.ID,
				"summary", entry.Summary)
		}
		out = append(out, s.codec.DecodeEntry(entry))
	}
	return out, nil
}

// Create validates and stores e. Local events get an id when missing.
func (s *Service) Create(ctx context.Context, e core.Event) (core.Event, error) {
	e = e.Normalize(s.defaults)
	if err := e.Validate(); err != nil {
		return core.Event{}, fmt.Errorf("create event: %w", err)
	}

	if s.remote == nil {
		added, err := s.local.Add(ctx, e)
		if err != nil {
			return core.Event{}, fmt.Errorf("create event: %w", err)
		}
		eventLogger(ctx, applog.OpCreate, added).InfoContext(ctx, "Event created")
		s.publish(ctx, added.ID, OpUpsert)
		return added, nil
	}

	summary, description, err := s.codec.Encode(e)
	if err != nil {
		return core.Event{}, fmt.Errorf("create event: %w", err)
	}
	raw, err := s.remote.Create(ctx, summary, description, e.Date)
	if err != nil {
		return core.Event{}, fmt.Errorf("create event: %w", err)
	}
	created, err := s.decodeRaw(raw)
	if err != nil {
		return core.Event{}, fmt.Errorf("create event: %w", err)
	}
	eventLogger(ctx, applog.OpCreate, created).InfoContext(ctx, "Event created")
	return created, nil
}

// Update replaces the event with id by e. An unknown local id is ignored:
// the zero event is returned and nothing is published.
func (s *Service) Update(ctx context.Context, id string, e core.Event) (core.Event, error) {
	e.ID = id
	e = e.Normalize(s.defaults)
	if err := e.Validate(); err != nil {
		return core.Event{}, fmt.Errorf("update event %s: %w", id, err)
	}

	if s.remote == nil {
		updated, ok, err := s.local.Update(ctx, id, store.FullPatch(e))
		if err != nil {
			return core.Event{}, fmt.Errorf("update event %s: %w", id, err)
		}
		if !ok {
			return core.Event{}, nil
		}
		eventLogger(ctx, applog.OpUpdate, updated).InfoContext(ctx, "Event updated")
		s.publish(ctx, id, OpUpsert)
		return updated, nil
	}

	summary, description, err := s.codec.Encode(e)
	if err != nil {
		return core.Event{}, fmt.Errorf("update event %s: %w", id, err)
	}
	raw, err := s.remote.Update(ctx, id, summary, description, e.Date)
	if err != nil {
		return core.Event{}, fmt.Errorf("update event %s: %w", id, err)
	}
	updated, err := s.decodeRaw(raw)
	if err != nil {
		return core.Event{}, fmt.Errorf("update event %s: %w", id, err)
	}
	eventLogger(ctx, applog.OpUpdate, updated).InfoContext(ctx, "Event updated")
	return updated, nil
}

// Delete removes the event with id. Unknown ids are ignored.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s.remote == nil {
		if err := s.local.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete event %s: %w", id, err)
		}
		s.publish(ctx, id, OpDelete)
	} else if err := s.remote.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	applog.FromContext(ctx).InfoContext(ctx, "Event deleted", applog.FieldOperation, applog.OpDelete, applog.FieldEventID, id)
	return nil
}

// Report aggregates the events of p.
func (s *Service) Report(ctx context.Context, p core.Period) (Report, error) {
	if err := p.Validate(); err != nil {
		return Report{}, err
	}
	start, end := p.Range()
	evs, err := s.List(ctx, start, end)
	if err != nil {
		return Report{}, err
	}
	evs = core.FilterByPeriod(evs, p)
	applog.FromContext(ctx).WithFields(applog.NewFields().WithOperation(applog.OpReport).WithPeriod(p)).
		DebugContext(ctx, "Computing report", "events", len(evs))

	stats := core.Aggregate(evs, p, s.locale)
	return Report{
		Period:           p,
		Stats:            stats,
		IncomeBreakdown:  core.SortedCategories(stats.IncomeByCategory),
		ExpenseBreakdown: core.SortedCategories(stats.ExpensesByCategory),
		Daily:            core.DailyStatistics(evs),
		Recent:           core.RecentTransactions(evs, RecentLimit),
		Upcoming:         core.UpcomingEvents(evs, core.DateOf(s.now())),
	}, nil
}

func (s *Service) decodeRaw(raw calendar.RawEntry) (core.Event, error) {
	entry, err := calendar.ParseEntry(raw)
	if err != nil {
		return core.Event{}, fmt.Errorf("remote response: %w", err)
	}
	return s.codec.DecodeEntry(entry), nil
}

func (s *Service) publish(ctx context.Context, id, op string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEventSync(ctx, id, op); err != nil {
		// The local write already succeeded; the next reconcile catches up.
		applog.FromContext(ctx).WithFields(applog.NewFields().WithOperation(applog.OpSync).WithError(err)).
			ErrorContext(ctx, "Failed to publish sync message", applog.FieldEventID, id, "sync_operation", op)
	}
}

func eventLogger(ctx context.Context, op string, e core.Event) *applog.Logger {
	return applog.FromContext(ctx).WithFields(applog.NewFields().WithOperation(op).WithEvent(e))
}

// IsValidation reports errors caused by the event itself rather than a
// backend failure.
func IsValidation(err error) bool {
	return errors.Is(err, core.ErrMissingAmount) ||
		errors.Is(err, core.ErrEmptyTitle) ||
		errors.Is(err, core.ErrInvalidKind) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidDay) ||
		errors.Is(err, core.ErrInvalidMonth)
}
