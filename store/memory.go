package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryStore is an in-process Store used by tests and local
// development (STORE_DRIVER=memory). Transactions and batches are
// serialized under one mutex, which gives them the same atomicity the
// hosted store guarantees. Like the hosted store, deleting a document
// leaves its subcollections in place.
type MemoryStore struct {
	mu           sync.Mutex
	docs         map[string]map[string]any
	batchCommits int
	txCommits    int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]any)}
}

// BatchCommits reports how many batch commits have been applied. Tests
// use it to count physical flushes of bounded bulk writes.
func (s *MemoryStore) BatchCommits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batchCommits
}

// TxCommits reports how many transactions have committed.
func (s *MemoryStore) TxCommits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txCommits
}

func (s *MemoryStore) Get(ctx context.Context, path string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(path)
}

func (s *MemoryStore) getLocked(path string) (*Document, error) {
	data, ok := s.docs[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrorNotFound, path)
	}
	return &Document{ID: docID(path), Path: path, Data: copyData(data)}, nil
}

func (s *MemoryStore) Set(ctx context.Context, path string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = copyData(data)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, path string, updates []Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(path, updates)
}

func (s *MemoryStore) updateLocked(path string, updates []Update) error {
	data, ok := s.docs[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrorNotFound, path)
	}
	for _, u := range updates {
		if inc, ok := u.Value.(Increment); ok {
			data[u.Field] = ToDecimal(data[u.Field]).Add(inc.Delta)
			continue
		}
		data[u.Field] = copyValue(u.Value)
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, path)
	return nil
}

func (s *MemoryStore) Documents(ctx context.Context, collectionPath string) ([]*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentsLocked(collectionPath), nil
}

func (s *MemoryStore) documentsLocked(collectionPath string) []*Document {
	prefix := collectionPath + "/"
	var out []*Document
	for path, data := range s.docs {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		if strings.Contains(path[len(prefix):], "/") {
			continue
		}
		out = append(out, &Document{ID: docID(path), Path: path, Data: copyData(data)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) NewDocID(collectionPath string) string {
	return uuid.NewString()
}

// RunTransaction serializes the body under the store mutex: reads see
// committed state, writes are buffered and applied only when the body
// returns nil. Serialization means a body never observes a concurrent
// write, so a single attempt suffices.
func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &memoryTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	for _, op := range tx.ops {
		if err := op(); err != nil {
			return err
		}
	}
	s.txCommits++
	return nil
}

type memoryTx struct {
	store *MemoryStore
	ops   []func() error
}

func (t *memoryTx) Get(path string) (*Document, error) {
	return t.store.getLocked(path)
}

func (t *memoryTx) Documents(collectionPath string) ([]*Document, error) {
	return t.store.documentsLocked(collectionPath), nil
}

func (t *memoryTx) Set(path string, data map[string]any) {
	snapshot := copyData(data)
	t.ops = append(t.ops, func() error {
		t.store.docs[path] = snapshot
		return nil
	})
}

func (t *memoryTx) Update(path string, updates []Update) {
	t.ops = append(t.ops, func() error {
		return t.store.updateLocked(path, updates)
	})
}

func (t *memoryTx) Delete(path string) {
	t.ops = append(t.ops, func() error {
		delete(t.store.docs, path)
		return nil
	})
}

func (s *MemoryStore) NewBatch() Batch {
	return &memoryBatch{store: s}
}

type memoryBatch struct {
	store *MemoryStore
	ops   []func() error
}

func (b *memoryBatch) Set(path string, data map[string]any) {
	snapshot := copyData(data)
	b.ops = append(b.ops, func() error {
		b.store.docs[path] = snapshot
		return nil
	})
}

func (b *memoryBatch) Update(path string, updates []Update) {
	b.ops = append(b.ops, func() error {
		return b.store.updateLocked(path, updates)
	})
}

func (b *memoryBatch) Delete(path string) {
	b.ops = append(b.ops, func() error {
		delete(b.store.docs, path)
		return nil
	})
}

func (b *memoryBatch) Len() int { return len(b.ops) }

func (b *memoryBatch) Commit(ctx context.Context) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	for _, op := range b.ops {
		if err := op(); err != nil {
			return err
		}
	}
	b.store.batchCommits++
	b.ops = nil
	return nil
}

// ToDecimal normalizes a stored numeric value. The hosted driver hands
// back float64/int64, the memory driver hands back whatever was
// written, including decimal.Decimal.
func ToDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case float64:
		return decimal.NewFromFloat(n)
	case int64:
		return decimal.NewFromInt(n)
	case int:
		return decimal.NewFromInt(int64(n))
	default:
		return decimal.Zero
	}
}

func docID(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyData(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
