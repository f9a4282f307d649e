package workflow_test

import (
	"context"
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/budgets_backend/models"
	"bitbucket.org/mmdatafocus/budgets_backend/store"
	"bitbucket.org/mmdatafocus/budgets_backend/utils"
	"bitbucket.org/mmdatafocus/budgets_backend/workflow"
)

func TestRebuildHealthySummariesReportsNothing(t *testing.T) {
	ctx := context.Background()
	_, project, act := newExtraActivity(t)
	extraPath := models.AggregatePath{ProjectID: project.ID, Hierarchy: models.HierarchyExtra, ActivityID: act.ID}
	plainPath := models.AggregatePath{ProjectID: project.ID, Hierarchy: models.HierarchyBudget}

	if _, err := models.CreateMaterial(ctx, plainPath, &models.NewLineItem{Name: "Sand", Quantity: dec(5), Cost: dec(10)}); err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}
	if _, err := models.CreateLabor(ctx, extraPath, &models.NewLineItem{Name: "Crew", Quantity: dec(2), Cost: dec(60)}); err != nil {
		t.Fatalf("CreateLabor: %v", err)
	}

	drifts, err := workflow.RebuildProjectSummaries(ctx, project.ID)
	if err != nil {
		t.Fatalf("RebuildProjectSummaries: %v", err)
	}
	if len(drifts) != 0 {
		t.Fatalf("healthy project reported drift: %+v", drifts)
	}
}

// Corrupt a plain-budget sum and an activity sum, then verify the
// rebuild restores both and the extra summary rolls up from the
// repaired activity.
func TestRebuildRepairsDriftedSums(t *testing.T) {
	ctx := context.Background()
	s, project, act := newExtraActivity(t)
	extraPath := models.AggregatePath{ProjectID: project.ID, Hierarchy: models.HierarchyExtra, ActivityID: act.ID}
	plainPath := models.AggregatePath{ProjectID: project.ID, Hierarchy: models.HierarchyBudget}

	if _, err := models.CreateMaterial(ctx, plainPath, &models.NewLineItem{Name: "Sand", Quantity: dec(5), Cost: dec(10)}); err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}
	if _, err := models.CreateLabor(ctx, extraPath, &models.NewLineItem{Name: "Crew", Quantity: dec(2), Cost: dec(60)}); err != nil {
		t.Fatalf("CreateLabor: %v", err)
	}

	// Simulate the crash windows: stray absolute writes on two summaries.
	if err := s.Update(ctx, plainPath.SummaryPath(), []store.Update{
		{Field: models.FieldSumMaterials, Value: dec(9999)},
	}); err != nil {
		t.Fatalf("corrupt summary: %v", err)
	}
	if err := s.Update(ctx, extraPath.ActivityPath(), []store.Update{
		{Field: models.FieldSumLabors, Value: dec(1)},
	}); err != nil {
		t.Fatalf("corrupt activity: %v", err)
	}

	drifts, err := workflow.RebuildProjectSummaries(ctx, project.ID)
	if err != nil {
		t.Fatalf("RebuildProjectSummaries: %v", err)
	}
	if len(drifts) != 2 {
		t.Fatalf("drift count = %d, want 2: %+v", len(drifts), drifts)
	}
	for _, d := range drifts {
		switch d.Path {
		case plainPath.SummaryPath():
			if d.Field != models.FieldSumMaterials || !d.Stored.Equal(dec(9999)) || !d.Actual.Equal(dec(50)) {
				t.Fatalf("unexpected plain drift: %+v", d)
			}
		case extraPath.ActivityPath():
			if d.Field != models.FieldSumLabors || !d.Actual.Equal(dec(120)) {
				t.Fatalf("unexpected activity drift: %+v", d)
			}
		default:
			t.Fatalf("drift on unexpected path %s", d.Path)
		}
	}

	sum, err := models.GetBudgetSummary(ctx, project.ID, models.HierarchyBudget)
	if err != nil {
		t.Fatalf("GetBudgetSummary: %v", err)
	}
	if !sum.SumMaterials.Equal(dec(50)) {
		t.Fatalf("plain sumMaterials = %s after rebuild, want 50", sum.SumMaterials)
	}
	got, _ := models.GetActivity(ctx, project.ID, act.ID)
	if !got.SumLabors.Equal(dec(120)) {
		t.Fatalf("activity sumLabors = %s after rebuild, want 120", got.SumLabors)
	}
	extraSum, _ := models.GetBudgetSummary(ctx, project.ID, models.HierarchyExtra)
	if !extraSum.SumLabors.Equal(dec(120)) {
		t.Fatalf("extra sumLabors = %s after rebuild, want 120", extraSum.SumLabors)
	}

	// A second run finds nothing left to repair.
	drifts, err = workflow.RebuildProjectSummaries(ctx, project.ID)
	if err != nil {
		t.Fatalf("second rebuild: %v", err)
	}
	if len(drifts) != 0 {
		t.Fatalf("second rebuild still drifting: %+v", drifts)
	}
}

func TestRebuildMissingProject(t *testing.T) {
	ctx := context.Background()
	newExtraActivity(t)

	if _, err := workflow.RebuildProjectSummaries(ctx, "ghost"); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected ErrorRecordNotFound, got %v", err)
	}
}
