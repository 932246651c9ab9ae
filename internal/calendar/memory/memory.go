package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fincal/internal/calendar"
	"fincal/internal/core"
)


// Remote is an in-memory calendar.Remote for local runs and tests.
type Remote struct {
	mu      sync.Mutex
	seq     int
	entries map[string]calendar.RawEntry
	order   []string
}

var _ calendar.Remote = (*Remote)(nil)

func New() *Remote {
	return &Remote{entries: map[string]calendar.RawEntry{}}
}

// Seed stores raw as is, malformed or not. Entries without id get one.
func (r *Remote) Seed(raw ...calendar.RawEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range raw {
		if e.ID == "" {
			e.ID = r.nextID()
		}
		r.put(e)
	}
}

// List returns entries dated in [start, end) in date order. Entries whose
// start cannot be read are always returned, as a real remote would.
func (r *Remote) List(_ context.Context, start, end core.Date) ([]calendar.RawEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]calendar.RawEntry, 0, len(r.order))
	for _, id := range r.order {
		e := r.entries[id]
		if d, ok := startDate(e); ok && (d.Before(start) || !d.Before(end)) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, _ := startDate(out[i])
		dj, _ := startDate(out[j])
		return di.Before(dj)
	})
	return out, nil
}

func (r *Remote) Create(_ context.Context, summary, description string, date core.Date) (calendar.RawEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := calendar.NewRawEntry(r.nextID(), summary, description, date)
	r.put(e)
	return e, nil
}

func (r *Remote) Update(_ context.Context, id, summary, description string, date core.Date) (calendar.RawEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return calendar.RawEntry{}, fmt.Errorf("update %s: %w", id, calendar.ErrNotFound)
	}
	e := calendar.NewRawEntry(id, summary, description, date)
	r.entries[id] = e
	return e, nil
}

// Delete removes id. Unknown ids are ignored.
func (r *Remote) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return nil
	}
	delete(r.entries, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of stored entries.
func (r *Remote) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Remote) nextID() string {
	r.seq++
	return fmt.Sprintf("mem-%d", r.seq)
}

func (r *Remote) put(e calendar.RawEntry) {
	if _, ok := r.entries[e.ID]; !ok {
		r.order = append(r.order, e.ID)
	}
	r.entries[e.ID] = e
}

func startDate(e calendar.RawEntry) (core.Date, bool) {
	if e.Start == nil {
		return core.Date{}, false
	}
	s := e.Start.Date
	if s == "" {
		s = e.Start.DateTime
	}
	d, err := core.ParseDate(s)
	return d, err == nil
}
