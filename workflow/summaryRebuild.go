package workflow

import (
	"context"
	"errors"
	"fmt"

	"bitbucket.org/mmdatafocus/budgets_backend/config"
	"bitbucket.org/mmdatafocus/budgets_backend/models"
	"bitbucket.org/mmdatafocus/budgets_backend/store"
	"bitbucket.org/mmdatafocus/budgets_backend/utils"
	"github.com/shopspring/decimal"
)

// SummaryDrift records one summary field whose stored value disagreed
// with the recomputed sum of its children.
type SummaryDrift struct {
	Path   string          `json:"path"`
	Field  string          `json:"field"`
	Stored decimal.Decimal `json:"stored"`
	Actual decimal.Decimal `json:"actual"`
}

// RebuildProjectSummaries recomputes every running total of one
// project from its children and overwrites drifted fields with plain
// (non-increment) writes. It is the recovery tool for the crash windows
// the cascade delete accepts; normal operation never needs it.
//
// The rebuild is not atomic with concurrent line-item traffic; run it
// while the project budget is closed.
func RebuildProjectSummaries(ctx context.Context, projectID string) ([]SummaryDrift, error) {
	logger := config.GetLogger()
	s := config.GetStore()

	if _, err := s.Get(ctx, models.ProjectPath(projectID)); err != nil {
		if errors.Is(err, store.ErrorNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, utils.ClassifyStoreError(err)
	}

	var drifts []SummaryDrift

	// Plain budget: summary sums come straight from the item subtotals.
	plain := models.AggregatePath{ProjectID: projectID, Hierarchy: models.HierarchyBudget}
	plainSums, err := sumLineItems(ctx, plain)
	if err != nil {
		config.LogError(logger, "summaryRebuild.go", "RebuildProjectSummaries", plain.SummaryPath(), nil, err)
		return nil, utils.ClassifyStoreError(err)
	}
	d, err := reconcileSums(ctx, s, plain.SummaryPath(), plainSums)
	if err != nil {
		config.LogError(logger, "summaryRebuild.go", "RebuildProjectSummaries", plain.SummaryPath(), nil, err)
		return nil, utils.ClassifyStoreError(err)
	}
	drifts = append(drifts, d...)

	// Extra budget: rebuild each activity from its items first, then the
	// summary from the activity sums.
	activities, err := models.ListActivities(ctx, projectID)
	if err != nil {
		return nil, err
	}
	extraTotals := zeroSums()
	for _, act := range activities {
		actPath := models.AggregatePath{ProjectID: projectID, Hierarchy: models.HierarchyExtra, ActivityID: act.ID}
		actSums, err := sumLineItems(ctx, actPath)
		if err != nil {
			config.LogError(logger, "summaryRebuild.go", "RebuildProjectSummaries", actPath.ActivityPath(), nil, err)
			return nil, utils.ClassifyStoreError(err)
		}
		d, err := reconcileSums(ctx, s, actPath.ActivityPath(), actSums)
		if err != nil {
			config.LogError(logger, "summaryRebuild.go", "RebuildProjectSummaries", actPath.ActivityPath(), nil, err)
			return nil, utils.ClassifyStoreError(err)
		}
		drifts = append(drifts, d...)
		for field, v := range actSums {
			extraTotals[field] = extraTotals[field].Add(v)
		}
	}
	extraPath := models.SummaryPath(projectID, models.HierarchyExtra)
	d, err = reconcileSums(ctx, s, extraPath, extraTotals)
	if err != nil {
		config.LogError(logger, "summaryRebuild.go", "RebuildProjectSummaries", extraPath, nil, err)
		return nil, utils.ClassifyStoreError(err)
	}
	drifts = append(drifts, d...)

	return drifts, nil
}

func zeroSums() map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal, len(models.SumFields))
	for _, field := range models.SumFields {
		sums[field] = decimal.Zero
	}
	return sums
}

// sumLineItems recomputes the four per-kind totals under one aggregate
// path from the item subtotals.
func sumLineItems(ctx context.Context, path models.AggregatePath) (map[string]decimal.Decimal, error) {
	sums := zeroSums()
	for _, kind := range models.LineItemKinds {
		items, err := models.ListLineItems(ctx, path, kind)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			sums[kind.SumField()] = sums[kind.SumField()].Add(item.Subtotal)
		}
	}
	return sums, nil
}

// reconcileSums overwrites drifted sum fields on one summary document
// and reports what changed.
func reconcileSums(ctx context.Context, s store.Store, path string, actual map[string]decimal.Decimal) ([]SummaryDrift, error) {
	doc, err := s.Get(ctx, path)
	if err != nil {
		if errors.Is(err, store.ErrorNotFound) {
			return nil, fmt.Errorf("%w: %s", utils.ErrorAggregateMissing, path)
		}
		return nil, err
	}

	var drifts []SummaryDrift
	var updates []store.Update
	for _, field := range models.SumFields {
		stored := store.ToDecimal(doc.Data[field])
		if stored.Equal(actual[field]) {
			continue
		}
		drifts = append(drifts, SummaryDrift{Path: path, Field: field, Stored: stored, Actual: actual[field]})
		updates = append(updates, store.Update{Field: field, Value: actual[field]})
	}
	if len(updates) > 0 {
		if err := s.Update(ctx, path, updates); err != nil {
			return nil, err
		}
	}
	return drifts, nil
}
