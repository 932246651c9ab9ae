package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fincal/internal/amqp"
	"fincal/internal/calendar"
	"fincal/internal/codec"
	"fincal/internal/core"
	applog "fincal/internal/log"
	"fincal/internal/store"
)

// SyncWorker mirrors local events to the remote calendar. Work on one
// local id is serialized, so a message and a reconcile pass never create
// two remote entries for the same event.
type SyncWorker struct {
	local  *store.Local
	remote calendar.Remote
	codec  *codec.Codec
	ids    *IDMap

	mu    sync.Mutex
	locks map[string]*idLock
}

type idLock struct {
	mu   sync.Mutex
	refs int
}

func NewSyncWorker(local *store.Local, remote calendar.Remote, c *codec.Codec, ids *IDMap) *SyncWorker {
	return &SyncWorker{local: local, remote: remote, codec: c, ids: ids, locks: map[string]*idLock{}}
}

// ReconcileResult counts what a reconcile pass did.
type ReconcileResult struct {
	Upserted int
	Deleted  int
	Skipped  int
	Failed   int
}

type outcome int

const (
	outcomeUpserted outcome = iota
	outcomeDeleted
	outcomeSkipped
)

// HandleSyncMessage processes one message from AMQP. A returned error
// requeues the message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EventSyncMessage) error {
	logger := applog.FromContext(ctx).With(
		applog.FieldOperation, applog.OpSync,
		applog.FieldEventID, msg.EventID,
		"sync_operation", msg.Operation)
	logger.InfoContext(ctx, "Processing sync message")

	switch msg.Operation {
	case amqp.OperationDelete:
		unlock := w.lock(msg.EventID)
		defer unlock()
		return w.deleteRemote(ctx, msg.EventID)
	case amqp.OperationUpsert:
		_, err := w.syncEvent(ctx, msg.EventID)
		if errors.Is(err, core.ErrMissingAmount) {
			logger.WithFields(applog.NewFields().WithError(err)).
				ErrorContext(ctx, "Event cannot be encoded, dropping sync message")
			return nil
		}
		return err
	default:
		return fmt.Errorf("%w: unknown operation %q", amqp.ErrInvalidMessage, msg.Operation)
	}
}

// Reconcile pushes every local event and removes remote entries whose
// local event is gone. It recovers from lost messages.
func (w *SyncWorker) Reconcile(ctx context.Context) (ReconcileResult, error) {
	logger := applog.FromContext(ctx).With(applog.FieldOperation, applog.OpReconcile)

	var res ReconcileResult
	count := func(localID string, o outcome, err error) {
		switch {
		case errors.Is(err, core.ErrMissingAmount):
			res.Skipped++
		case err != nil:
			logger.WithFields(applog.NewFields().WithError(err)).
				ErrorContext(ctx, "Failed to sync event", applog.FieldEventID, localID)
			res.Failed++
		case o == outcomeDeleted:
			res.Deleted++
		case o == outcomeSkipped:
			res.Skipped++
		default:
			res.Upserted++
		}
	}

	evs, err := w.local.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list local events: %w", err)
	}
	present := make(map[string]struct{}, len(evs))
	for _, e := range evs {
		present[e.ID] = struct{}{}
		o, err := w.syncEvent(ctx, e.ID)
		count(e.ID, o, err)
	}

	mapped, err := w.ids.All(ctx)
	if err != nil {
		return res, err
	}
	for localID := range mapped {
		if _, ok := present[localID]; ok {
			continue
		}
		// Rechecked under the id lock: the event may have been created
		// since the local list was read.
		o, err := w.syncEvent(ctx, localID)
		count(localID, o, err)
	}

	logger.InfoContext(ctx, "Reconcile completed",
		"upserted", res.Upserted,
		"deleted", res.Deleted,
		"skipped", res.Skipped,
		"failed", res.Failed)
	return res, nil
}

// syncEvent brings the remote entry of localID in line with the current
// local state, holding the id lock for the whole read-write sequence.
func (w *SyncWorker) syncEvent(ctx context.Context, localID string) (outcome, error) {
	unlock := w.lock(localID)
	defer unlock()

	e, ok, err := w.local.Get(ctx, localID)
	if err != nil {
		return outcomeSkipped, fmt.Errorf("get event from storage: %w", err)
	}
	if !ok {
		// Deleted locally before the upsert was handled.
		return outcomeDeleted, w.deleteRemote(ctx, localID)
	}
	return outcomeUpserted, w.upsertRemote(ctx, e)
}

func (w *SyncWorker) lock(localID string) (unlock func()) {
	w.mu.Lock()
	l, ok := w.locks[localID]
	if !ok {
		l = &idLock{}
		w.locks[localID] = l
	}
	l.refs++
	w.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		w.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(w.locks, localID)
		}
		w.mu.Unlock()
	}
}

func (w *SyncWorker) upsertRemote(ctx context.Context, e core.Event) error {
	summary, description, err := w.codec.Encode(e)
	if err != nil {
		return err
	}
	remoteID, ok, err := w.ids.Get(ctx, e.ID)
	if err != nil {
		return err
	}
	logger := applog.FromContext(ctx).WithFields(applog.NewFields().WithOperation(applog.OpSync).WithEvent(e))
	if ok {
		_, err := w.remote.Update(ctx, remoteID, summary, description, e.Date)
		switch {
		case err == nil:
			logger.DebugContext(ctx, "Updated remote event", applog.FieldRemoteID, remoteID)
			return nil
		case errors.Is(err, calendar.ErrNotFound):
			logger.WarnContext(ctx, "Remote event vanished, recreating", applog.FieldRemoteID, remoteID)
		default:
			return fmt.Errorf("update remote event %s: %w", remoteID, err)
		}
	}

	raw, err := w.remote.Create(ctx, summary, description, e.Date)
	if err != nil {
		return fmt.Errorf("create remote event: %w", err)
	}
	if err := w.ids.Put(ctx, e.ID, raw.ID); err != nil {
		return err
	}
	logger.InfoContext(ctx, "Created remote event", applog.FieldRemoteID, raw.ID)
	return nil
}

func (w *SyncWorker) deleteRemote(ctx context.Context, localID string) error {
	logger := applog.FromContext(ctx).With(applog.FieldOperation, applog.OpDelete, applog.FieldEventID, localID)
	remoteID, ok, err := w.ids.Get(ctx, localID)
	if err != nil {
		return err
	}
	if !ok {
		logger.DebugContext(ctx, "No remote event to delete")
		return nil
	}
	if err := w.remote.Delete(ctx, remoteID); err != nil {
		return fmt.Errorf("delete remote event %s: %w", remoteID, err)
	}
	logger.InfoContext(ctx, "Deleted remote event", applog.FieldRemoteID, remoteID)
	return w.ids.Delete(ctx, localID)
}
