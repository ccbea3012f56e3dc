// Package syncer reconciles the local transaction list against external
// backups: a realtime remote document collection and/or a single-file
// backup target. Conflicts are never surfaced to the user; whichever side
// has the newer modification time wins, in full. There is no field-level
// merge.
package syncer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ATE168Forever/divtrack"
	"github.com/ATE168Forever/divtrack/store"
	"go.uber.org/zap"
)

// Status is the user-visible condition of the sync machinery. Failures of
// remote operations surface here instead of propagating into UI event
// handlers.
type Status struct {
	State    State
	AutoSave bool
	Backend  string // name of the backup target, "" when none
	LastErr  string // last non-fatal remote failure, "" when healthy
}

// Orchestrator drives all synchronization for one transaction store.
type Orchestrator struct {
	store *store.TransactionStore
	docs  DocumentStore
	log   *zap.Logger
	now   func() time.Time

	mu            sync.Mutex
	backend       Backend
	state         State
	autoSave      bool
	lastErr       string
	firstLoadDone bool
	uploadedOnce  bool

	// saveSeq orders auto-saves; saveMu serializes the writes themselves,
	// so no two saves for the target run concurrently and a stale in-flight
	// save cannot overwrite the result of a newer one.
	saveSeq  atomic.Int64
	saveMu   sync.Mutex
	savedSeq int64
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDocumentStore attaches the authenticated remote collection.
func WithDocumentStore(d DocumentStore) Option { return func(o *Orchestrator) { o.docs = d } }

// WithBackend attaches a single-file backup target.
func WithBackend(b Backend) Option { return func(o *Orchestrator) { o.backend = b } }

// WithLogger substitutes the logger.
func WithLogger(l *zap.Logger) Option { return func(o *Orchestrator) { o.log = l } }

// WithNow substitutes the clock, for tests.
func WithNow(now func() time.Time) Option { return func(o *Orchestrator) { o.now = now } }

// New returns an Orchestrator for the given transaction store.
func New(s *store.TransactionStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{store: s, log: zap.NewNop(), now: time.Now, state: Idle}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Status returns the current sync status.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	st := Status{State: o.state, AutoSave: o.autoSave, LastErr: o.lastErr}
	if o.backend != nil {
		st.Backend = o.backend.Name()
	}
	return st
}

func (o *Orchestrator) transition(e Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = Transition(o.state, e)
}

func (o *Orchestrator) setErr(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err == nil {
		o.lastErr = ""
		return
	}
	o.lastErr = err.Error()
}

// EnableAutoSave turns on file-backed auto-save. The remote freshness
// check strictly precedes any write: when the backup's modification time
// is newer than the local last-updated stamp, the backup replaces the
// entire local list and is re-persisted locally and to the document
// collection; otherwise the local list stays the source of truth. An
// unreachable, missing or denied backup never blocks enabling: the
// failure lands in Status instead.
func (o *Orchestrator) EnableAutoSave(ctx context.Context) Status {
	o.mu.Lock()
	backend := o.backend
	o.mu.Unlock()

	localFresher := true
	if backend != nil {
		if err := o.adoptBackupIfNewer(ctx, backend, &localFresher); err != nil {
			o.log.Warn("backup unavailable, enabling auto-save from local state",
				zap.String("backend", backend.Name()), zap.Error(err))
			o.setErr(err)
			if errors.Is(err, os.ErrPermission) {
				// a denied cached handle would loop forever; drop it so the
				// next attempt re-prompts the user
				o.mu.Lock()
				o.backend = nil
				o.mu.Unlock()
			}
		} else {
			o.setErr(nil)
		}
	}

	o.mu.Lock()
	o.autoSave = true
	o.mu.Unlock()

	if localFresher {
		// seed the backup with the current local list
		o.saveToBackend(ctx)
	}
	return o.Status()
}

// adoptBackupIfNewer implements freshest-wins for the file target.
// localFresher reports whether the local list remained the winner.
func (o *Orchestrator) adoptBackupIfNewer(ctx context.Context, backend Backend, localFresher *bool) error {
	modTime, err := backend.Stat(ctx)
	if err != nil {
		return err
	}
	localAt, ok := o.store.UpdatedAt()
	if ok && !modTime.After(localAt) {
		return nil // local wins, nothing to adopt
	}

	data, err := backend.Read(ctx)
	if err != nil {
		return err
	}
	txs, err := divtrack.DecodeCSV(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if err := o.store.Write(txs); err != nil {
		return err
	}
	*localFresher = false
	adopted := o.store.Read()
	o.log.Info("backup replaced local transaction history",
		zap.String("backend", backend.Name()),
		zap.Time("backupTime", modTime), zap.Int("count", len(adopted)))

	if o.docs != nil {
		if err := o.docs.Replace(ctx, adopted); err != nil {
			// non-fatal: the collection catches up on the next mutation
			o.log.Warn("cannot replicate adopted backup to document collection", zap.Error(err))
			o.setErr(err)
		}
	}
	return nil
}

// DisableAutoSave stops writing the backup on mutations.
func (o *Orchestrator) DisableAutoSave() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.autoSave = false
}

// Add validates nothing: the caller owns user-input validation. It
// persists locally, mirrors the addition to the document collection and
// updates the backup when auto-save is on.
func (o *Orchestrator) Add(ctx context.Context, tx divtrack.Transaction) error {
	// assign the id up front so the local copy and the mirrored document
	// agree on it
	tx = divtrack.Normalize([]divtrack.Transaction{tx})[0]
	txs := append(o.store.Read(), tx)
	if err := o.store.Write(txs); err != nil {
		return err
	}
	o.mirror(ctx, func() error { return o.docs.BatchPut(ctx, []divtrack.Transaction{tx}) })
	o.saveToBackend(ctx)
	return nil
}

// Update replaces the record with the same id.
func (o *Orchestrator) Update(ctx context.Context, tx divtrack.Transaction) error {
	// normalize before writing so the local copy and the mirrored
	// document agree: a sell must not carry a price in either place
	tx = divtrack.Normalize([]divtrack.Transaction{tx})[0]
	txs := o.store.Read()
	for i := range txs {
		if txs[i].ID == tx.ID {
			txs[i] = tx
		}
	}
	if err := o.store.Write(txs); err != nil {
		return err
	}
	o.mirror(ctx, func() error { return o.docs.BatchPut(ctx, []divtrack.Transaction{tx}) })
	o.saveToBackend(ctx)
	return nil
}

// Delete removes the record with this id.
func (o *Orchestrator) Delete(ctx context.Context, id string) error {
	txs := o.store.Read()
	kept := txs[:0]
	for _, tx := range txs {
		if tx.ID != id {
			kept = append(kept, tx)
		}
	}
	if err := o.store.Write(kept); err != nil {
		return err
	}
	o.mirror(ctx, func() error { return o.docs.BatchDelete(ctx, []string{id}) })
	o.saveToBackend(ctx)
	return nil
}

// ReplaceAll swaps the entire history, e.g. after a CSV import.
func (o *Orchestrator) ReplaceAll(ctx context.Context, txs []divtrack.Transaction) error {
	if err := o.store.Write(txs); err != nil {
		return err
	}
	o.mirror(ctx, func() error { return o.docs.Replace(ctx, o.store.Read()) })
	o.saveToBackend(ctx)
	return nil
}

// mirror runs a document-collection write, downgrading failures to status.
func (o *Orchestrator) mirror(ctx context.Context, op func() error) {
	if o.docs == nil {
		return
	}
	o.transition(EventLocalWrite)
	if err := op(); err != nil {
		o.log.Warn("document collection write failed", zap.Error(err))
		o.setErr(err)
	}
}

// saveToBackend writes the current local list to the backup target. Saves
// are ordered by a sequence token: when a newer save has already been
// written, an older in-flight one is dropped rather than applied out of
// order.
func (o *Orchestrator) saveToBackend(ctx context.Context) {
	o.mu.Lock()
	backend := o.backend
	enabled := o.autoSave
	o.mu.Unlock()
	if !enabled || backend == nil {
		return
	}

	seq := o.saveSeq.Add(1)
	var buf bytes.Buffer
	if err := divtrack.EncodeCSV(&buf, o.store.Read()); err != nil {
		o.setErr(err)
		return
	}

	o.saveMu.Lock()
	defer o.saveMu.Unlock()
	if seq <= o.savedSeq {
		o.log.Debug("auto-save superseded", zap.Int64("seq", seq), zap.Int64("latest", o.savedSeq))
		return
	}
	o.savedSeq = seq
	if err := backend.Write(ctx, buf.Bytes()); err != nil {
		o.log.Warn("auto-save failed", zap.String("backend", backend.Name()), zap.Error(err))
		o.setErr(err)
		return
	}
	o.setErr(nil)
}

// Run subscribes to the document collection and applies snapshots until
// ctx is cancelled. It returns nil on cancellation and the subscription
// error otherwise.
func (o *Orchestrator) Run(ctx context.Context) error {
	if o.docs == nil {
		return errors.New("no document store configured")
	}
	o.transition(EventConnect)
	ch, err := o.docs.Subscribe(ctx)
	if err != nil {
		o.transition(EventSubscribeFailed)
		o.setErr(err)
		return err
	}
	for snap := range ch {
		o.applySnapshot(ctx, snap)
	}
	if ctx.Err() != nil {
		return nil
	}
	o.transition(EventSubscribeFailed)
	return errors.New("document subscription closed")
}

// applySnapshot folds one remote snapshot into local state.
func (o *Orchestrator) applySnapshot(ctx context.Context, snap Snapshot) {
	switch {
	case snap.FromCache:
		o.transition(EventSnapshotFromCache)
	case snap.HasPendingWrites:
		o.transition(EventLocalWrite)
	default:
		o.transition(EventSnapshotConfirmed)
	}
	if snap.FromCache {
		// unconfirmed data never overwrites local state
		return
	}

	local := o.store.Read()

	o.mu.Lock()
	first := !o.firstLoadDone
	o.firstLoadDone = true
	uploaded := o.uploadedOnce
	o.mu.Unlock()

	if first && len(snap.Transactions) == 0 && len(local) > 0 {
		// empty collection, non-empty local list: upload once instead of
		// clobbering the local history with nothing
		if uploaded {
			return
		}
		o.mu.Lock()
		o.uploadedOnce = true
		o.mu.Unlock()
		if err := o.docs.Replace(ctx, local); err != nil {
			o.log.Warn("one-shot snapshot upload failed", zap.Error(err))
			o.setErr(err)
		}
		return
	}

	if divtrack.TransactionsEqual(snap.Transactions, local) {
		return // avoid redundant writes and re-renders
	}
	if err := o.store.Write(snap.Transactions); err != nil {
		o.log.Warn("cannot apply remote snapshot", zap.Error(err))
		o.setErr(err)
		return
	}
	o.saveToBackend(ctx)
}
