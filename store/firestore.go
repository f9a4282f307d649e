package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore adapts a Firestore client to the Store surface.
// Decimal values are written as float64 (Firestore's numeric type) and
// come back as float64; ToDecimal reverses the conversion on read.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Get(ctx context.Context, path string) (*Document, error) {
	snap, err := s.client.Doc(path).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: %s", ErrorNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	return &Document{ID: snap.Ref.ID, Path: path, Data: snap.Data()}, nil
}

func (s *FirestoreStore) Set(ctx context.Context, path string, data map[string]any) error {
	_, err := s.client.Doc(path).Set(ctx, encodeData(data))
	return err
}

func (s *FirestoreStore) Update(ctx context.Context, path string, updates []Update) error {
	_, err := s.client.Doc(path).Update(ctx, encodeUpdates(updates))
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %s", ErrorNotFound, path)
	}
	return err
}

func (s *FirestoreStore) Delete(ctx context.Context, path string) error {
	_, err := s.client.Doc(path).Delete(ctx)
	return err
}

func (s *FirestoreStore) Documents(ctx context.Context, collectionPath string) ([]*Document, error) {
	iter := s.client.Collection(collectionPath).Documents(ctx)
	defer iter.Stop()
	return drainIterator(collectionPath, iter)
}

func (s *FirestoreStore) NewDocID(collectionPath string) string {
	return s.client.Collection(collectionPath).NewDoc().ID
}

// RunTransaction delegates to Firestore's optimistic transactions: the
// body is retried on conflicting concurrent writes until it commits or
// the retry budget is exhausted.
func (s *FirestoreStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.client.RunTransaction(ctx, func(ctx context.Context, t *firestore.Transaction) error {
		return fn(&firestoreTx{client: s.client, tx: t})
	})
}

type firestoreTx struct {
	client *firestore.Client
	tx     *firestore.Transaction
}

func (t *firestoreTx) Get(path string) (*Document, error) {
	snap, err := t.tx.Get(t.client.Doc(path))
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: %s", ErrorNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	return &Document{ID: snap.Ref.ID, Path: path, Data: snap.Data()}, nil
}

func (t *firestoreTx) Documents(collectionPath string) ([]*Document, error) {
	iter := t.tx.Documents(t.client.Collection(collectionPath))
	defer iter.Stop()
	return drainIterator(collectionPath, iter)
}

func (t *firestoreTx) Set(path string, data map[string]any) {
	t.tx.Set(t.client.Doc(path), encodeData(data))
}

func (t *firestoreTx) Update(path string, updates []Update) {
	t.tx.Update(t.client.Doc(path), encodeUpdates(updates))
}

func (t *firestoreTx) Delete(path string) {
	t.tx.Delete(t.client.Doc(path))
}

func (s *FirestoreStore) NewBatch() Batch {
	return &firestoreBatch{client: s.client, batch: s.client.Batch()}
}

type firestoreBatch struct {
	client *firestore.Client
	batch  *firestore.WriteBatch
	count  int
}

func (b *firestoreBatch) Set(path string, data map[string]any) {
	b.batch.Set(b.client.Doc(path), encodeData(data))
	b.count++
}

func (b *firestoreBatch) Update(path string, updates []Update) {
	b.batch.Update(b.client.Doc(path), encodeUpdates(updates))
	b.count++
}

func (b *firestoreBatch) Delete(path string) {
	b.batch.Delete(b.client.Doc(path))
	b.count++
}

func (b *firestoreBatch) Len() int { return b.count }

func (b *firestoreBatch) Commit(ctx context.Context) error {
	_, err := b.batch.Commit(ctx)
	return err
}

func drainIterator(collectionPath string, iter *firestore.DocumentIterator) ([]*Document, error) {
	var out []*Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, &Document{
			ID:   snap.Ref.ID,
			Path: collectionPath + "/" + snap.Ref.ID,
			Data: snap.Data(),
		})
	}
}

func encodeUpdates(updates []Update) []firestore.Update {
	out := make([]firestore.Update, 0, len(updates))
	for _, u := range updates {
		if inc, ok := u.Value.(Increment); ok {
			out = append(out, firestore.Update{Path: u.Field, Value: firestore.Increment(inc.Delta.InexactFloat64())})
			continue
		}
		out = append(out, firestore.Update{Path: u.Field, Value: encodeValue(u.Value)})
	}
	return out
}

func encodeData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = encodeValue(v)
	}
	return out
}

func encodeValue(v any) any {
	switch val := v.(type) {
	case decimal.Decimal:
		return val.InexactFloat64()
	case map[string]any:
		return encodeData(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = encodeValue(item)
		}
		return out
	default:
		return v
	}
}
