package backend

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"fincal/internal/calendar"
	gcal "fincal/internal/calendar/google"
	"fincal/internal/events"
	"fincal/internal/resilience"
	"fincal/internal/storage"
	"fincal/internal/store"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateService opens the configured backend and wraps it in an event
// service. publisher is only used by local backends and may be nil.
func (f *DefaultFactory) CreateService(ctx context.Context, config Config, publisher events.Publisher) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	c := config.Codec()
	opts := []events.Option{
		events.WithLocale(config.ReportLocale()),
		events.WithDefaults(c.Defaults()),
	}

	if config.Type == CalendarBackend {
		remote, err := f.OpenRemote(ctx, config)
		if err != nil {
			return nil, err
		}
		return &Result{
			Service: events.NewRemote(remote, c, opts...),
			Codec:   c,
		}, nil
	}

	local, err := f.OpenLocal(ctx, config)
	if err != nil {
		return nil, err
	}
	if publisher != nil {
		opts = append(opts, events.WithPublisher(publisher))
	}
	return &Result{
		Service: events.NewLocal(local.Store, opts...),
		Codec:   c,
		Local:   local,
		Cleanup: local.Cleanup,
	}, nil
}

// OpenLocal opens the local store for memory, file or sqlite backends.
func (f *DefaultFactory) OpenLocal(_ context.Context, config Config) (*Local, error) {
	switch config.Type {
	case SQLiteBackend:
		db, err := storage.OpenSQLite(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite storage: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return &Local{
			Store:   store.NewLocal(db.Blob(store.EventsKey)),
			Blob:    func(key string) store.Blob { return db.Blob(key) },
			Cleanup: db.Close,
		}, nil

	case FileBackend:
		dir := filepath.Dir(config.DataFilePath)
		f.logger.Info("Initialized file backend", "path", config.DataFilePath)
		return &Local{
			Store: store.NewLocal(storage.NewFileBlob(config.DataFilePath)),
			Blob: func(key string) store.Blob {
				return storage.NewFileBlob(filepath.Join(dir, key+".json"))
			},
		}, nil

	case MemoryBackend:
		var mu sync.Mutex
		blobs := map[string]*storage.MemoryBlob{}
		blob := func(key string) store.Blob {
			mu.Lock()
			defer mu.Unlock()
			b, ok := blobs[key]
			if !ok {
				b = storage.NewMemoryBlob()
				blobs[key] = b
			}
			return b
		}
		f.logger.Info("Initialized memory backend")
		return &Local{Store: store.NewLocal(blob(store.EventsKey)), Blob: blob}, nil

	default:
		return nil, fmt.Errorf("backend %s has no local store", config.Type)
	}
}

// OpenRemote connects to Google Calendar.
func (f *DefaultFactory) OpenRemote(ctx context.Context, config Config) (calendar.Remote, error) {
	if config.Credentials == nil {
		return nil, fmt.Errorf("calendar credentials not configured")
	}
	creds, err := config.Credentials()
	if err != nil {
		return nil, fmt.Errorf("load calendar credentials: %w", err)
	}
	cli, err := gcal.New(ctx, gcal.Config{
		CalendarID:      config.CalendarID,
		CredentialsJSON: creds,
		Timeout:         config.RemoteTimeout,
		Retry:           resilience.DefaultConfig(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Calendar client: %w", err)
	}
	f.logger.Info("Initialized Google Calendar backend", "calendar_id", config.CalendarID)
	return cli, nil
}
