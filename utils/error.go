package utils

import (
	"errors"
	"fmt"
)

var (
	ErrorRecordNotFound = errors.New("record not found")

	// ErrorAggregateMissing reports that an ancestor summary or activity
	// document required by the operation does not exist. Not retryable
	// without caller intervention.
	ErrorAggregateMissing = errors.New("aggregate document missing")

	// ErrorStore wraps transport or commit failures from the document
	// store. Safe to retry for updates and deletes; creates need
	// deduplication by the caller before a retry.
	ErrorStore = errors.New("store operation failed")

	ErrorBudgetClosed = errors.New("project budget is closed")
)

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}

// ClassifyStoreError maps raw driver errors onto the public taxonomy at
// an operation boundary. Domain errors pass through untouched so the
// caller never sees store-specific error types.
func ClassifyStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrorAggregateMissing) ||
		errors.Is(err, ErrorRecordNotFound) ||
		errors.Is(err, ErrorBudgetClosed) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrorStore, err)
}
