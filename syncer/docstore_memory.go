package syncer

import (
	"context"
	"sort"
	"sync"

	"github.com/ATE168Forever/divtrack"
)

// MemoryDocumentStore is a DocumentStore held in memory. It backs tests
// and unauthenticated runs, and doubles as the reference semantics for
// real document-store adapters: server-assigned creation order, whole
// snapshots on every change, an initial snapshot on subscribe.
type MemoryDocumentStore struct {
	mu   sync.Mutex
	docs map[string]memoryDoc
	seq  int64
	subs map[int]chan Snapshot
	next int
}

type memoryDoc struct {
	tx      divtrack.Transaction
	created int64
	updated int64
}

// NewMemoryDocumentStore returns an empty collection.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		docs: make(map[string]memoryDoc),
		subs: make(map[int]chan Snapshot),
	}
}

func (m *MemoryDocumentStore) BatchPut(ctx context.Context, txs []divtrack.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tx := range txs {
		m.seq++
		doc, ok := m.docs[tx.ID]
		if !ok {
			doc = memoryDoc{created: m.seq}
		}
		doc.tx = tx
		doc.updated = m.seq
		m.docs[tx.ID] = doc
	}
	m.notifyLocked()
	return nil
}

func (m *MemoryDocumentStore) BatchDelete(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.docs, id)
	}
	m.notifyLocked()
	return nil
}

func (m *MemoryDocumentStore) Replace(ctx context.Context, txs []divtrack.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = make(map[string]memoryDoc, len(txs))
	for _, tx := range txs {
		m.seq++
		m.docs[tx.ID] = memoryDoc{tx: tx, created: m.seq, updated: m.seq}
	}
	m.notifyLocked()
	return nil
}

func (m *MemoryDocumentStore) Subscribe(ctx context.Context) (<-chan Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	ch := make(chan Snapshot, 32)
	id := m.next
	m.next++
	m.subs[id] = ch
	ch <- m.snapshotLocked()
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
		m.mu.Unlock()
	}()
	return ch, nil
}

func (m *MemoryDocumentStore) snapshotLocked() Snapshot {
	docs := make([]memoryDoc, 0, len(m.docs))
	for _, doc := range m.docs {
		docs = append(docs, doc)
	}
	// server order: by trade date, creation order breaking ties
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].tx.Date != docs[j].tx.Date {
			return docs[i].tx.Date.Before(docs[j].tx.Date)
		}
		return docs[i].created < docs[j].created
	})
	txs := make([]divtrack.Transaction, len(docs))
	for i, doc := range docs {
		txs[i] = doc.tx
	}
	return Snapshot{Transactions: txs}
}

func (m *MemoryDocumentStore) notifyLocked() {
	snap := m.snapshotLocked()
	for _, ch := range m.subs {
		select {
		case ch <- snap:
		default:
			// a slow subscriber misses intermediate snapshots, never blocks
			// the writer; the next change delivers the latest state
		}
	}
}
