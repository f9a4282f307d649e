package store

import "context"

// BatchWriter drains an unbounded stream of writes through fixed-size
// batches: operations enqueue onto one pending batch, and whenever the
// pending batch reaches BatchLimit it is committed and a fresh one
// started. The operation counter is shared across everything written
// through one BatchWriter, not per collection.
type BatchWriter struct {
	store Store
	batch Batch
	limit int
}

func NewBatchWriter(s Store) *BatchWriter {
	return &BatchWriter{store: s, batch: s.NewBatch(), limit: BatchLimit}
}

func (w *BatchWriter) Delete(ctx context.Context, path string) error {
	w.batch.Delete(path)
	return w.flushIfFull(ctx)
}

func (w *BatchWriter) Set(ctx context.Context, path string, data map[string]any) error {
	w.batch.Set(path, data)
	return w.flushIfFull(ctx)
}

func (w *BatchWriter) Update(ctx context.Context, path string, updates []Update) error {
	w.batch.Update(path, updates)
	return w.flushIfFull(ctx)
}

func (w *BatchWriter) flushIfFull(ctx context.Context) error {
	if w.batch.Len() < w.limit {
		return nil
	}
	return w.Flush(ctx)
}

// Flush commits the pending batch, if any operations are queued.
func (w *BatchWriter) Flush(ctx context.Context) error {
	if w.batch.Len() == 0 {
		return nil
	}
	if err := w.batch.Commit(ctx); err != nil {
		return err
	}
	w.batch = w.store.NewBatch()
	return nil
}
