package workflow

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/budgets_backend/config"
	"bitbucket.org/mmdatafocus/budgets_backend/models"
	"bitbucket.org/mmdatafocus/budgets_backend/store"
	"bitbucket.org/mmdatafocus/budgets_backend/utils"
)

// DeleteProject removes a project and both of its budget hierarchies.
// Descendants drain through bounded batches like the activity cascade;
// the two summary documents and the project document go last in one
// final batch. No compensating decrement is needed because the
// summaries are deleted along with everything they summarize.
// Deleting an absent project is a no-op.
func DeleteProject(ctx context.Context, projectID string) error {
	logger := config.GetLogger()
	s := config.GetStore()

	if _, err := s.Get(ctx, models.ProjectPath(projectID)); err != nil {
		if errors.Is(err, store.ErrorNotFound) {
			return nil
		}
		config.LogError(logger, "projectDeleteWorkflow.go", "DeleteProject", projectID, nil, err)
		return utils.ClassifyStoreError(err)
	}

	w := store.NewBatchWriter(s)

	// Extra hierarchy: drain each activity's item collections, then the
	// activity docs themselves.
	extraSummary := models.AggregatePath{ProjectID: projectID, Hierarchy: models.HierarchyExtra}
	activities, err := s.Documents(ctx, extraSummary.SummaryPath()+"/activities")
	if err != nil {
		config.LogError(logger, "projectDeleteWorkflow.go", "DeleteProject", projectID, nil, err)
		return utils.ClassifyStoreError(err)
	}
	for _, act := range activities {
		actPath := models.AggregatePath{ProjectID: projectID, Hierarchy: models.HierarchyExtra, ActivityID: act.ID}
		if err := drainLineItems(ctx, s, w, actPath); err != nil {
			config.LogError(logger, "projectDeleteWorkflow.go", "DeleteProject", act.Path, nil, err)
			return utils.ClassifyStoreError(err)
		}
		if err := w.Delete(ctx, act.Path); err != nil {
			config.LogError(logger, "projectDeleteWorkflow.go", "DeleteProject", act.Path, nil, err)
			return utils.ClassifyStoreError(err)
		}
	}

	// Plain hierarchy: items hang directly off the summary.
	plain := models.AggregatePath{ProjectID: projectID, Hierarchy: models.HierarchyBudget}
	if err := drainLineItems(ctx, s, w, plain); err != nil {
		config.LogError(logger, "projectDeleteWorkflow.go", "DeleteProject", projectID, nil, err)
		return utils.ClassifyStoreError(err)
	}
	if err := w.Flush(ctx); err != nil {
		config.LogError(logger, "projectDeleteWorkflow.go", "DeleteProject", projectID, nil, err)
		return utils.ClassifyStoreError(err)
	}

	final := s.NewBatch()
	final.Delete(plain.SummaryPath())
	final.Delete(extraSummary.SummaryPath())
	final.Delete(models.ProjectPath(projectID))
	if err := final.Commit(ctx); err != nil {
		config.LogError(logger, "projectDeleteWorkflow.go", "DeleteProject", projectID, nil, err)
		return utils.ClassifyStoreError(err)
	}
	return nil
}

// drainLineItems enqueues deletes for all four item collections of one
// aggregate path, including each material's subMaterials children.
func drainLineItems(ctx context.Context, s store.Store, w *store.BatchWriter, path models.AggregatePath) error {
	for _, kind := range models.LineItemKinds {
		docs, err := s.Documents(ctx, path.Collection(kind))
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if kind == models.KindMaterial {
				if err := drainCollection(ctx, s, w, path.SubMaterialCollection(doc.ID)); err != nil {
					return err
				}
			}
			if err := w.Delete(ctx, doc.Path); err != nil {
				return err
			}
		}
	}
	return nil
}
