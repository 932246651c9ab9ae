// Package calendar defines the boundary to a remote calendar service.
//
// Remote payloads are loose: any field may be missing. ParseEntry is the
// only way from a RawEntry to an Entry, so nothing downstream ever sees a
// half-populated payload.
package calendar

import (
	"context"
	"errors"
	"fmt"

	"fincal/internal/core"
)

var (
	ErrMalformedEntry = errors.New("malformed calendar entry")
	// ErrNotFound is returned by Update when the remote entry is gone.
	ErrNotFound = errors.New("calendar entry not found")
)

type (
	// RawEntry mirrors a remote entry as received. Nil means absent.
	RawEntry struct {
		ID          string
		Summary     *string
		Description *string
		Start       *RawTime
	}

	// RawTime carries either an all-day date or a timestamp.
	RawTime struct {
		Date     string
		DateTime string
	}

	// Entry is a validated remote entry.
	Entry struct {
		ID          string
		Summary     string
		Description string
		Date        core.Date
	}

	// Remote is the remote calendar store.
	Remote interface {
		// List returns entries dated in [start, end).
		List(ctx context.Context, start, end core.Date) ([]RawEntry, error)
		Create(ctx context.Context, summary, description string, date core.Date) (RawEntry, error)
		Update(ctx context.Context, id, summary, description string, date core.Date) (RawEntry, error)
		Delete(ctx context.Context, id string) error
	}
)

// ParseEntry validates raw. A missing summary or start date is rejected;
// a missing description is read as empty.
func ParseEntry(raw RawEntry) (Entry, error) {
	if raw.Summary == nil {
		return Entry{}, fmt.Errorf("%w: entry %q has no summary", ErrMalformedEntry, raw.ID)
	}
	if raw.Start == nil {
		return Entry{}, fmt.Errorf("%w: entry %q has no start", ErrMalformedEntry, raw.ID)
	}
	dateStr := raw.Start.Date
	if dateStr == "" {
		dateStr = raw.Start.DateTime
	}
	if dateStr == "" {
		return Entry{}, fmt.Errorf("%w: entry %q has no start date", ErrMalformedEntry, raw.ID)
	}
	d, err := core.ParseDate(dateStr)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: entry %q: %v", ErrMalformedEntry, raw.ID, err)
	}
	e := Entry{ID: raw.ID, Summary: *raw.Summary, Date: d}
	if raw.Description != nil {
		e.Description = *raw.Description
	}
	return e, nil
}

// NewRawEntry builds a well-formed raw entry for an all-day date, as a
// remote store would return it.
func NewRawEntry(id, summary, description string, date core.Date) RawEntry {
	return RawEntry{
		ID:          id,
		Summary:     &summary,
		Description: &description,
		Start:       &RawTime{Date: date.String()},
	}
}
