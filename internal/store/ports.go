// Package store keeps the event collection in a single-key blob.
package store

import (
	"context"
	"errors"
)

// EventsKey is the fixed key the whole collection is stored under.
const EventsKey = "financial-calendar-events"

var (
	// ErrNotFound is returned by Blob.Read when nothing was written yet.
	ErrNotFound = errors.New("blob not found")
	// ErrUnavailable marks a persistence layer with no durable context.
	ErrUnavailable = errors.New("storage unavailable")
)

// Blob is a single-key persistence layer. Every Write replaces the value.
type Blob interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}
