package models_test

import (
	"context"
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/budgets_backend/config"
	"bitbucket.org/mmdatafocus/budgets_backend/models"
	"bitbucket.org/mmdatafocus/budgets_backend/store"
	"bitbucket.org/mmdatafocus/budgets_backend/utils"
	"github.com/shopspring/decimal"
)

// CreateProject provisions both summaries alongside the project doc, so
// line-item creates never race an absent summary chain.
func TestCreateProjectProvisionsSummaries(t *testing.T) {
	ctx := context.Background()
	_, project := newTestProject(t)

	for _, h := range []models.Hierarchy{models.HierarchyBudget, models.HierarchyExtra} {
		sum, err := models.GetBudgetSummary(ctx, project.ID, h)
		if err != nil {
			t.Fatalf("%s summary: %v", h, err)
		}
		if !sum.Total().IsZero() {
			t.Fatalf("%s summary starts at %s, want 0", h, sum.Total())
		}
		if !sum.Exchange.Equal(decimal.NewFromInt(1)) {
			t.Fatalf("%s exchange = %s, want 1", h, sum.Exchange)
		}
	}
	if !project.BudgetOpen {
		t.Fatalf("new project should start open")
	}
}

func TestUpdateProjectPartialFields(t *testing.T) {
	ctx := context.Background()
	_, project := newTestProject(t)

	status := "on hold"
	got, err := models.UpdateProject(ctx, project.ID, &models.ProjectFields{Status: &status})
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if got.Status != "on hold" || got.Name != project.Name {
		t.Fatalf("unexpected project after partial update: %+v", got)
	}

	if _, err := models.UpdateProject(ctx, "ghost", &models.ProjectFields{Status: &status}); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected ErrorRecordNotFound, got %v", err)
	}
}

// Editing exchange/adminFee never touches a sum field.
func TestUpdateBudgetSummaryFieldsLeavesSums(t *testing.T) {
	ctx := context.Background()
	_, project := newTestProject(t)
	path := plainPath(project.ID)

	if _, err := models.CreateOther(ctx, path, &models.NewLineItem{Name: "Permit", Quantity: dec(1), Cost: dec(75)}); err != nil {
		t.Fatalf("CreateOther: %v", err)
	}

	ex := dec(2100)
	fee := dec(5)
	got, err := models.UpdateBudgetSummaryFields(ctx, project.ID, models.HierarchyBudget, &models.BudgetSummaryFields{
		Exchange: &ex, AdminFee: &fee,
	})
	if err != nil {
		t.Fatalf("UpdateBudgetSummaryFields: %v", err)
	}
	if !got.Exchange.Equal(ex) || !got.AdminFee.Equal(fee) {
		t.Fatalf("fields not applied: %+v", got)
	}

	sum := summaryMust(t, project.ID, models.HierarchyBudget)
	if !sum.SumOthers.Equal(dec(75)) {
		t.Fatalf("sumOthers = %s after field edit, want 75", sum.SumOthers)
	}

	_, err = models.UpdateBudgetSummaryFields(ctx, "ghost", models.HierarchyBudget, &models.BudgetSummaryFields{Exchange: &ex})
	if !errors.Is(err, utils.ErrorAggregateMissing) {
		t.Fatalf("expected ErrorAggregateMissing, got %v", err)
	}
}

func TestEnsureBudgetOpen(t *testing.T) {
	ctx := context.Background()
	_, project := newTestProject(t)

	if err := models.EnsureBudgetOpen(ctx, project.ID); err != nil {
		t.Fatalf("open project rejected: %v", err)
	}

	closed := false
	if _, err := models.UpdateProject(ctx, project.ID, &models.ProjectFields{BudgetOpen: &closed}); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if err := models.EnsureBudgetOpen(ctx, project.ID); !errors.Is(err, utils.ErrorBudgetClosed) {
		t.Fatalf("expected ErrorBudgetClosed, got %v", err)
	}
}

func TestActivityLifecycle(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	config.SetStore(s)

	// Activities require the extra summary.
	if _, err := models.CreateActivity(ctx, "ghost", &models.NewActivity{Name: "Roofing"}); !errors.Is(err, utils.ErrorAggregateMissing) {
		t.Fatalf("expected ErrorAggregateMissing, got %v", err)
	}

	project, err := models.CreateProject(ctx, &models.NewProject{Name: "Depot"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	act, err := models.CreateActivity(ctx, project.ID, &models.NewActivity{Name: "Roofing", Exchange: dec(1)})
	if err != nil {
		t.Fatalf("CreateActivity: %v", err)
	}
	if !act.Total().IsZero() {
		t.Fatalf("new activity total = %s, want 0", act.Total())
	}

	got, err := models.UpdateActivity(ctx, project.ID, act.ID, &models.NewActivity{Name: "Roofing phase 2", Exchange: dec(1), AdminFee: dec(3)})
	if err != nil {
		t.Fatalf("UpdateActivity: %v", err)
	}
	if got.Name != "Roofing phase 2" || !got.AdminFee.Equal(dec(3)) {
		t.Fatalf("unexpected activity after update: %+v", got)
	}

	// Sums survive a non-sum edit.
	path := models.AggregatePath{ProjectID: project.ID, Hierarchy: models.HierarchyExtra, ActivityID: act.ID}
	if _, err := models.CreateOther(ctx, path, &models.NewLineItem{Name: "Crane", Quantity: dec(1), Cost: dec(40)}); err != nil {
		t.Fatalf("CreateOther: %v", err)
	}
	if _, err := models.UpdateActivity(ctx, project.ID, act.ID, &models.NewActivity{Name: "Roofing final"}); err != nil {
		t.Fatalf("UpdateActivity: %v", err)
	}
	after, _ := models.GetActivity(ctx, project.ID, act.ID)
	if !after.SumOthers.Equal(dec(40)) {
		t.Fatalf("sumOthers = %s after activity edit, want 40", after.SumOthers)
	}

	list, err := models.ListActivities(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1", len(list))
	}

	if _, err := models.UpdateActivity(ctx, project.ID, "ghost", &models.NewActivity{Name: "x"}); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected ErrorRecordNotFound, got %v", err)
	}
}
