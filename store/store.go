// Package store owns the on-device transaction list. It is the sole
// authority for that list and hides storage-format evolution (the legacy
// cookie location of early versions) from every caller.
package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ATE168Forever/divtrack"
	"github.com/ATE168Forever/divtrack/storage"
	"go.uber.org/zap"
)

const (
	// transactionsKey is the primary location of the transaction list.
	transactionsKey = "transaction_history"
	// updatedAtKey stamps the last write, in unix milliseconds. The sync
	// orchestrator compares it against remote modification times.
	updatedAtKey = "transaction_history_updated_at"
)

// LegacySource reads the pre-migration location of the transaction list.
// It returns the raw JSON payload and whether anything was found. The
// browser original kept it in a cookie; a Go deployment can plug any old
// location in. Clear removes the legacy copy after a successful migration.
type LegacySource interface {
	Read() (payload string, ok bool)
	Clear()
}

// TransactionStore reads and writes the canonical transaction list.
type TransactionStore struct {
	store  storage.Storage
	legacy LegacySource
	log    *zap.Logger
	now    func() time.Time
}

// Option configures a TransactionStore.
type Option func(*TransactionStore)

// WithLegacySource plugs in a pre-migration storage location.
func WithLegacySource(src LegacySource) Option {
	return func(s *TransactionStore) { s.legacy = src }
}

// WithLogger substitutes the logger.
func WithLogger(l *zap.Logger) Option { return func(s *TransactionStore) { s.log = l } }

// WithNow substitutes the clock, for tests.
func WithNow(now func() time.Time) Option { return func(s *TransactionStore) { s.now = now } }

// New returns a TransactionStore persisting through the given storage.
func New(st storage.Storage, opts ...Option) *TransactionStore {
	s := &TransactionStore{store: st, log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate moves the transaction list from the legacy location to the
// primary one, once. When the primary location is already populated (or no
// legacy source is configured) it is a no-op returning the primary list.
func (s *TransactionStore) Migrate() []divtrack.Transaction {
	if _, ok, err := s.store.Get(transactionsKey); err == nil && ok {
		return s.Read()
	}
	if s.legacy == nil {
		return s.Read()
	}
	payload, ok := s.legacy.Read()
	if !ok {
		return s.Read()
	}

	var txs []divtrack.Transaction
	if err := json.Unmarshal([]byte(payload), &txs); err != nil {
		s.log.Warn("legacy transaction payload is unreadable, ignoring", zap.Error(err))
		return s.Read()
	}
	normalized := divtrack.Normalize(txs)
	if err := s.Write(normalized); err != nil {
		s.log.Warn("cannot persist migrated transactions", zap.Error(err))
		return normalized
	}
	s.legacy.Clear()
	s.log.Info("migrated legacy transaction history", zap.Int("count", len(normalized)))
	return normalized
}

// Read returns the normalized transaction list, or an empty list on any
// parse or storage failure. It never fails the caller: a damaged store
// renders as an empty history, not a crash.
func (s *TransactionStore) Read() []divtrack.Transaction {
	raw, ok, err := s.store.Get(transactionsKey)
	if err != nil || !ok {
		return []divtrack.Transaction{}
	}
	var txs []divtrack.Transaction
	if err := json.Unmarshal([]byte(raw), &txs); err != nil {
		s.log.Warn("stored transaction history is unreadable", zap.Error(err))
		return []divtrack.Transaction{}
	}
	return divtrack.Normalize(txs)
}

// Write normalizes and persists the list, stamping the last-updated time.
func (s *TransactionStore) Write(txs []divtrack.Transaction) error {
	normalized := divtrack.Normalize(txs)
	data, err := json.Marshal(normalized)
	if err != nil {
		return fmt.Errorf("cannot marshal transaction history: %w", err)
	}
	if err := s.store.Set(transactionsKey, string(data)); err != nil {
		return fmt.Errorf("cannot persist transaction history: %w", err)
	}
	stamp := strconv.FormatInt(s.now().UnixMilli(), 10)
	if err := s.store.Set(updatedAtKey, stamp); err != nil {
		return fmt.Errorf("cannot persist update timestamp: %w", err)
	}
	return nil
}

// UpdatedAt returns the last write time, or zero time and false when the
// list was never written.
func (s *TransactionStore) UpdatedAt() (time.Time, bool) {
	raw, ok, err := s.store.Get(updatedAtKey)
	if err != nil || !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}
