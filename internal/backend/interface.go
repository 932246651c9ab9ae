package backend

import (
	"context"
	"time"

	"fincal/internal/calendar"
	"fincal/internal/codec"
	"fincal/internal/events"
	"fincal/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Local is an opened local store plus access to sibling blobs, such as
// the sync worker's id map.
type Local struct {
	Store   *store.Local
	Blob    func(key string) store.Blob
	Cleanup CleanupFunc
}

// Result is a ready event service over the configured backend.
type Result struct {
	Service *events.Service
	Codec   *codec.Codec
	// Local is nil for the calendar backend.
	Local   *Local
	Cleanup CleanupFunc
}

// Factory opens backends based on configuration
type Factory interface {
	CreateService(ctx context.Context, config Config, publisher events.Publisher) (*Result, error)
	OpenLocal(ctx context.Context, config Config) (*Local, error)
	OpenRemote(ctx context.Context, config Config) (calendar.Remote, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Local stores
	SQLiteDBPath string
	DataFilePath string

	// Google Calendar
	CalendarID    string
	Credentials   func() ([]byte, error)
	RemoteTimeout time.Duration

	// Codec and reports
	Locale          string
	DefaultCurrency string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	FileBackend     BackendType = "file"
	SQLiteBackend   BackendType = "sqlite"
	CalendarBackend BackendType = "calendar"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend, CalendarBackend:
		return true
	default:
		return false
	}
}

// IsLocal reports whether events live in a local store.
func (bt BackendType) IsLocal() bool {
	return bt != CalendarBackend
}
