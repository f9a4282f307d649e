package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"bitbucket.org/mmdatafocus/budgets_backend/config"
	"bitbucket.org/mmdatafocus/budgets_backend/models"
	"bitbucket.org/mmdatafocus/budgets_backend/store"
	"bitbucket.org/mmdatafocus/budgets_backend/utils"
	"bitbucket.org/mmdatafocus/budgets_backend/workflow"
	"github.com/shopspring/decimal"
)

func newExtraActivity(t *testing.T) (*store.MemoryStore, *models.Project, *models.Activity) {
	t.Helper()
	s := store.NewMemoryStore()
	config.SetStore(s)
	ctx := context.Background()
	project, err := models.CreateProject(ctx, &models.NewProject{Name: "Harbor Works"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	act, err := models.CreateActivity(ctx, project.ID, &models.NewActivity{Name: "Dredging"})
	if err != nil {
		t.Fatalf("CreateActivity: %v", err)
	}
	return s, project, act
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestDeleteActivityCompensatesSummary(t *testing.T) {
	ctx := context.Background()
	s, project, act := newExtraActivity(t)
	path := models.AggregatePath{ProjectID: project.ID, Hierarchy: models.HierarchyExtra, ActivityID: act.ID}

	// A second activity whose contribution must survive the cascade.
	keep, err := models.CreateActivity(ctx, project.ID, &models.NewActivity{Name: "Quay wall"})
	if err != nil {
		t.Fatalf("CreateActivity: %v", err)
	}
	keepPath := models.AggregatePath{ProjectID: project.ID, Hierarchy: models.HierarchyExtra, ActivityID: keep.ID}
	if _, err := models.CreateLabor(ctx, keepPath, &models.NewLineItem{Name: "Crew", Quantity: dec(1), Cost: dec(500)}); err != nil {
		t.Fatalf("CreateLabor: %v", err)
	}

	mat, err := models.CreateMaterial(ctx, path, &models.NewLineItem{Name: "Rebar", Quantity: dec(10), HasSubMaterials: true})
	if err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}
	if _, err := models.CreateSubMaterial(ctx, path, mat.ID, &models.NewSubMaterial{Name: "Bar 12mm", Quantity: dec(20), Cost: dec(5)}); err != nil {
		t.Fatalf("CreateSubMaterial: %v", err)
	}
	if _, err := models.CreateOther(ctx, path, &models.NewLineItem{Name: "Barge hire", Quantity: dec(2), Cost: dec(300)}); err != nil {
		t.Fatalf("CreateOther: %v", err)
	}

	if err := workflow.DeleteActivity(ctx, project.ID, act.ID); err != nil {
		t.Fatalf("DeleteActivity: %v", err)
	}

	if _, err := models.GetActivity(ctx, project.ID, act.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("activity still readable: %v", err)
	}
	for _, kind := range models.LineItemKinds {
		docs, _ := s.Documents(ctx, path.Collection(kind))
		if len(docs) != 0 {
			t.Fatalf("%d %s docs survived the cascade", len(docs), kind)
		}
	}
	subs, _ := s.Documents(ctx, path.SubMaterialCollection(mat.ID))
	if len(subs) != 0 {
		t.Fatalf("%d subMaterials survived the cascade", len(subs))
	}

	sum, err := models.GetBudgetSummary(ctx, project.ID, models.HierarchyExtra)
	if err != nil {
		t.Fatalf("GetBudgetSummary: %v", err)
	}
	if !sum.SumMaterials.IsZero() || !sum.SumOthers.IsZero() {
		t.Fatalf("deleted activity's sums remain: %+v", sum)
	}
	if !sum.SumLabors.Equal(dec(500)) {
		t.Fatalf("surviving activity's contribution lost: sumLabors = %s", sum.SumLabors)
	}

	// Re-running after completion must not decrement again.
	err = workflow.DeleteActivity(ctx, project.ID, act.ID)
	if !errors.Is(err, utils.ErrorAggregateMissing) {
		t.Fatalf("expected ErrorAggregateMissing on re-run, got %v", err)
	}
	sum, _ = models.GetBudgetSummary(ctx, project.ID, models.HierarchyExtra)
	if !sum.SumLabors.Equal(dec(500)) || !sum.SumMaterials.IsZero() {
		t.Fatalf("re-run moved the summary: %+v", sum)
	}
}

// With N descendants the drain runs ceil(N/BatchLimit) commits plus the
// final compensation batch.
func TestDeleteActivityBatchCount(t *testing.T) {
	ctx := context.Background()
	s, project, act := newExtraActivity(t)
	path := models.AggregatePath{ProjectID: project.ID, Hierarchy: models.HierarchyExtra, ActivityID: act.ID}

	n := store.BatchLimit + 50
	for i := 0; i < n; i++ {
		if _, err := models.CreateOther(ctx, path, &models.NewLineItem{
			Name: fmt.Sprintf("misc-%d", i), Quantity: dec(1), Cost: dec(1),
		}); err != nil {
			t.Fatalf("CreateOther: %v", err)
		}
	}

	before := s.BatchCommits()
	if err := workflow.DeleteActivity(ctx, project.ID, act.ID); err != nil {
		t.Fatalf("DeleteActivity: %v", err)
	}
	// ceil(450/400) = 2 drain commits + 1 final batch.
	if got := s.BatchCommits() - before; got != 3 {
		t.Fatalf("batch commits = %d, want 3", got)
	}
}

func TestDeleteActivityMissing(t *testing.T) {
	ctx := context.Background()
	_, project, _ := newExtraActivity(t)

	if err := workflow.DeleteActivity(ctx, project.ID, "ghost"); !errors.Is(err, utils.ErrorAggregateMissing) {
		t.Fatalf("expected ErrorAggregateMissing, got %v", err)
	}
}

func TestDeleteProjectRemovesEverything(t *testing.T) {
	ctx := context.Background()
	s, project, act := newExtraActivity(t)
	extraPath := models.AggregatePath{ProjectID: project.ID, Hierarchy: models.HierarchyExtra, ActivityID: act.ID}
	plainPath := models.AggregatePath{ProjectID: project.ID, Hierarchy: models.HierarchyBudget}

	if _, err := models.CreateMaterial(ctx, plainPath, &models.NewLineItem{Name: "Sand", Quantity: dec(2), Cost: dec(20)}); err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}
	if _, err := models.CreateLabor(ctx, extraPath, &models.NewLineItem{Name: "Crew", Quantity: dec(1), Cost: dec(80)}); err != nil {
		t.Fatalf("CreateLabor: %v", err)
	}

	if err := workflow.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}

	if _, err := models.GetProject(ctx, project.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("project still readable: %v", err)
	}
	for _, h := range []models.Hierarchy{models.HierarchyBudget, models.HierarchyExtra} {
		if _, err := models.GetBudgetSummary(ctx, project.ID, h); !errors.Is(err, utils.ErrorRecordNotFound) {
			t.Fatalf("%s summary still readable: %v", h, err)
		}
	}
	docs, _ := s.Documents(ctx, plainPath.Collection(models.KindMaterial))
	if len(docs) != 0 {
		t.Fatalf("plain items survived project delete")
	}
	docs, _ = s.Documents(ctx, extraPath.Collection(models.KindLabor))
	if len(docs) != 0 {
		t.Fatalf("extra items survived project delete")
	}

	// Absent project: no-op.
	if err := workflow.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("repeat DeleteProject: %v", err)
	}
}
