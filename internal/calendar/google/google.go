package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"fincal/internal/calendar"
	"fincal/internal/core"
	"fincal/internal/resilience"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
)

// Client is a calendar.Remote backed by the Google Calendar API. Entries
// are written as all-day events.
type Client struct {
	svc        *gcal.Service
	calendarID string
	timeout    time.Duration
	guard      *resilience.Guard
}

var _ calendar.Remote = (*Client)(nil)

// Config selects the calendar and bounds every remote call.
type Config struct {
	CalendarID      string
	CredentialsJSON []byte
	Timeout         time.Duration
	Retry           resilience.Config
}

// NewFromEnv creates a Calendar client using environment variables.
// Optional: GOOGLE_CALENDAR_ID (default "primary").
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	creds, err := credentialsFromEnv(ctx)
	if err != nil {
		return nil, err
	}
	return New(ctx, Config{
		CalendarID:      strings.TrimSpace(os.Getenv("GOOGLE_CALENDAR_ID")),
		CredentialsJSON: creds,
		Timeout:         30 * time.Second,
		Retry:           resilience.DefaultConfig(),
	})
}

// New creates a client from explicit settings.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if len(cfg.CredentialsJSON) == 0 {
		return nil, errors.New("missing service account credentials")
	}
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	slog.InfoContext(ctx, "Creating Google Calendar service with Service Account",
		"calendar_id", cfg.CalendarID,
		"credentials_size", len(cfg.CredentialsJSON))

	svc, err := gcal.NewService(ctx,
		goption.WithCredentialsJSON(cfg.CredentialsJSON),
		goption.WithScopes(gcal.CalendarEventsScope))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &Client{
		svc:        svc,
		calendarID: cfg.CalendarID,
		timeout:    cfg.Timeout,
		guard:      resilience.NewGuard("google-calendar", cfg.Retry),
	}, nil
}

func credentialsFromEnv(ctx context.Context) ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// List returns the entries starting in [start, end), following pagination.
func (c *Client) List(ctx context.Context, start, end core.Date) ([]calendar.RawEntry, error) {
	if c.svc == nil {
		return nil, errors.New("calendar service not initialized")
	}
	var out []calendar.RawEntry
	pageToken := ""
	for {
		var page *gcal.Events
		err := c.do(ctx, func(ctx context.Context) error {
			call := c.svc.Events.List(c.calendarID).
				TimeMin(start.Time().Format(time.RFC3339)).
				TimeMax(end.Time().Format(time.RFC3339)).
				SingleEvents(true).
				OrderBy("startTime").
				Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			var err error
			page, err = call.Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list events %s..%s: %w", start, end, err)
		}
		for _, item := range page.Items {
			out = append(out, toRaw(item))
		}
		if page.NextPageToken == "" {
			return out, nil
		}
		pageToken = page.NextPageToken
	}
}

// Create inserts an all-day entry on date.
func (c *Client) Create(ctx context.Context, summary, description string, date core.Date) (calendar.RawEntry, error) {
	if c.svc == nil {
		return calendar.RawEntry{}, errors.New("calendar service not initialized")
	}
	var created *gcal.Event
	err := c.do(ctx, func(ctx context.Context) error {
		var err error
		created, err = c.svc.Events.Insert(c.calendarID, toEvent(summary, description, date)).Context(ctx).Do()
		return err
	})
	if err != nil {
		return calendar.RawEntry{}, fmt.Errorf("create event: %w", err)
	}
	return toRaw(created), nil
}

// Update replaces summary, description and date of the entry with id.
func (c *Client) Update(ctx context.Context, id, summary, description string, date core.Date) (calendar.RawEntry, error) {
	if c.svc == nil {
		return calendar.RawEntry{}, errors.New("calendar service not initialized")
	}
	var updated *gcal.Event
	err := c.do(ctx, func(ctx context.Context) error {
		var err error
		updated, err = c.svc.Events.Update(c.calendarID, id, toEvent(summary, description, date)).Context(ctx).Do()
		return err
	})
	if isGone(err) {
		return calendar.RawEntry{}, fmt.Errorf("update event %s: %w", id, calendar.ErrNotFound)
	}
	if err != nil {
		return calendar.RawEntry{}, fmt.Errorf("update event %s: %w", id, err)
	}
	return toRaw(updated), nil
}

// Delete removes the entry with id. An entry already gone is not an error.
func (c *Client) Delete(ctx context.Context, id string) error {
	if c.svc == nil {
		return errors.New("calendar service not initialized")
	}
	err := c.do(ctx, func(ctx context.Context) error {
		return c.svc.Events.Delete(c.calendarID, id).Context(ctx).Do()
	})
	if isGone(err) {
		slog.DebugContext(ctx, "Remote event already deleted", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	return nil
}

// do runs fn under the per-call timeout and the resilience guard. Client
// errors (4xx other than 429) are not retried.
func (c *Client) do(ctx context.Context, fn func(context.Context) error) error {
	return c.guard.Do(ctx, func() error {
		callCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		err := fn(callCtx)
		if err != nil && !retryable(err) {
			return resilience.Permanent(err)
		}
		return err
	})
}

func retryable(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500
	}
	return true
}

func isGone(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone
	}
	return false
}

// toEvent builds an all-day event. Google treats the end date as
// exclusive, so it is the day after date.
func toEvent(summary, description string, date core.Date) *gcal.Event {
	return &gcal.Event{
		Summary:     summary,
		Description: description,
		Start:       &gcal.EventDateTime{Date: date.String()},
		End:         &gcal.EventDateTime{Date: date.AddDays(1).String()},
	}
}

// toRaw converts an API event. The Go client cannot tell an empty summary
// from a missing one, so summary and description are always present; a
// missing start stays nil and is rejected by calendar.ParseEntry.
func toRaw(ev *gcal.Event) calendar.RawEntry {
	if ev == nil {
		return calendar.RawEntry{}
	}
	summary, description := ev.Summary, ev.Description
	raw := calendar.RawEntry{ID: ev.Id, Summary: &summary, Description: &description}
	if ev.Start != nil && (ev.Start.Date != "" || ev.Start.DateTime != "") {
		raw.Start = &calendar.RawTime{Date: ev.Start.Date, DateTime: ev.Start.DateTime}
	}
	return raw
}
