// Package store is the document-store surface the budget engine is
// written against: point reads and writes, atomic per-field increments,
// bounded write batches and optimistic transactions. Firestore backs it
// in production; the memory driver backs tests and local development.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// BatchLimit is the queued-write count at which a pending batch must be
// committed and a fresh one started. Firestore caps a single batch at
// 500 operations; 400 leaves margin for trailing writes.
const BatchLimit = 400

// ErrorNotFound tags a Get on a document that does not exist.
var ErrorNotFound = errors.New("document not found")

// Document is one stored document plus its location.
type Document struct {
	ID   string
	Path string
	Data map[string]any
}

// Increment marks an Update value as an atomic numeric increment
// instead of a plain field overwrite.
type Increment struct {
	Delta decimal.Decimal
}

// Update is a single-field write: a plain value, or an Increment.
type Update struct {
	Field string
	Value any
}

// IncrementField builds an atomic-increment update for one field.
func IncrementField(field string, delta decimal.Decimal) Update {
	return Update{Field: field, Value: Increment{Delta: delta}}
}

type Store interface {
	// Get returns ErrorNotFound (never a nil doc with nil error) when
	// the document does not exist.
	Get(ctx context.Context, path string) (*Document, error)
	// Set fully overwrites the document, creating it if absent.
	Set(ctx context.Context, path string, data map[string]any) error
	// Update applies field-level writes to an existing document; it
	// fails with ErrorNotFound when the document is absent.
	Update(ctx context.Context, path string, updates []Update) error
	Delete(ctx context.Context, path string) error
	// Documents lists the direct documents of a collection. Deleting a
	// document does not delete its subcollections, so listings after a
	// parent delete still return the orphaned children.
	Documents(ctx context.Context, collectionPath string) ([]*Document, error)
	// NewDocID reserves a store-generated id under a collection without
	// writing anything.
	NewDocID(collectionPath string) string
	// RunTransaction executes fn atomically. The driver may re-invoke fn
	// on write conflicts, so the body must be safe to run repeatedly.
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
	NewBatch() Batch
}

// Tx is the transaction-scoped view of the store. All reads must happen
// before the first buffered write (Firestore rule); writes commit
// together when the body returns nil, or not at all.
type Tx interface {
	Get(path string) (*Document, error)
	Documents(collectionPath string) ([]*Document, error)
	Set(path string, data map[string]any)
	Update(path string, updates []Update)
	Delete(path string)
}

// Batch accumulates writes that commit atomically. Callers must keep
// Len at or below BatchLimit; BatchWriter handles that automatically.
type Batch interface {
	Set(path string, data map[string]any)
	Update(path string, updates []Update)
	Delete(path string)
	Len() int
	Commit(ctx context.Context) error
}
