// Package workflow holds the multi-step operations that cannot fit in
// one store transaction: cascading deletes and summary rebuilds.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"bitbucket.org/mmdatafocus/budgets_backend/config"
	"bitbucket.org/mmdatafocus/budgets_backend/models"
	"bitbucket.org/mmdatafocus/budgets_backend/store"
	"bitbucket.org/mmdatafocus/budgets_backend/utils"
)

// DeleteActivity removes one extra-budget activity and every document
// beneath it, then compensates the project summary.
//
// The store caps a batch at BatchLimit operations, so the cascade runs
// in two phases that are NOT jointly atomic:
//
//  1. drain every descendant collection (materials and each material's
//     subMaterials, labors, subcontracts, others) through one shared
//     bounded batch writer;
//  2. one final small batch that decrements the project summary's four
//     sums by the activity's pre-read sums and deletes the activity doc.
//
// A crash between the phases leaves descendants gone but the activity
// and the project sums intact; re-invoking the delete is idempotent
// (deleting an absent document is a no-op) and converges. Once phase 2
// has run, the activity doc is gone and a re-invocation fails with
// ErrorAggregateMissing without touching the sums again.
func DeleteActivity(ctx context.Context, projectID, activityID string) error {
	logger := config.GetLogger()
	s := config.GetStore()

	path := models.AggregatePath{ProjectID: projectID, Hierarchy: models.HierarchyExtra, ActivityID: activityID}
	summaryPath := path.SummaryPath()
	actPath := path.ActivityPath()

	actDoc, err := s.Get(ctx, actPath)
	if err != nil {
		if errors.Is(err, store.ErrorNotFound) {
			return fmt.Errorf("%w: %s", utils.ErrorAggregateMissing, actPath)
		}
		config.LogError(logger, "activityDeleteWorkflow.go", "DeleteActivity", actPath, nil, err)
		return utils.ClassifyStoreError(err)
	}
	if _, err := s.Get(ctx, summaryPath); err != nil {
		if errors.Is(err, store.ErrorNotFound) {
			return fmt.Errorf("%w: %s", utils.ErrorAggregateMissing, summaryPath)
		}
		config.LogError(logger, "activityDeleteWorkflow.go", "DeleteActivity", summaryPath, nil, err)
		return utils.ClassifyStoreError(err)
	}

	w := store.NewBatchWriter(s)
	for _, kind := range models.LineItemKinds {
		docs, err := s.Documents(ctx, path.Collection(kind))
		if err != nil {
			config.LogError(logger, "activityDeleteWorkflow.go", "DeleteActivity", path.Collection(kind), nil, err)
			return utils.ClassifyStoreError(err)
		}
		for _, doc := range docs {
			if kind == models.KindMaterial {
				if err := drainCollection(ctx, s, w, path.SubMaterialCollection(doc.ID)); err != nil {
					config.LogError(logger, "activityDeleteWorkflow.go", "DeleteActivity", doc.Path, nil, err)
					return utils.ClassifyStoreError(err)
				}
			}
			if err := w.Delete(ctx, doc.Path); err != nil {
				config.LogError(logger, "activityDeleteWorkflow.go", "DeleteActivity", doc.Path, nil, err)
				return utils.ClassifyStoreError(err)
			}
		}
	}
	if err := w.Flush(ctx); err != nil {
		config.LogError(logger, "activityDeleteWorkflow.go", "DeleteActivity", actPath, nil, err)
		return utils.ClassifyStoreError(err)
	}

	// Phase 2: compensate the summary and delete the activity together.
	final := s.NewBatch()
	decrements := make([]store.Update, 0, len(models.SumFields))
	for _, field := range models.SumFields {
		delta := store.ToDecimal(actDoc.Data[field]).Neg()
		decrements = append(decrements, store.IncrementField(field, delta))
	}
	final.Update(summaryPath, decrements)
	final.Delete(actPath)
	if err := final.Commit(ctx); err != nil {
		config.LogError(logger, "activityDeleteWorkflow.go", "DeleteActivity", actPath, nil, err)
		return utils.ClassifyStoreError(err)
	}
	return nil
}

// drainCollection enqueues a delete for every document of a collection
// onto the shared batch writer.
func drainCollection(ctx context.Context, s store.Store, w *store.BatchWriter, collectionPath string) error {
	docs, err := s.Documents(ctx, collectionPath)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := w.Delete(ctx, doc.Path); err != nil {
			return err
		}
	}
	return nil
}
