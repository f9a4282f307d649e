package models_test

import (
	"context"
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/budgets_backend/models"
	"bitbucket.org/mmdatafocus/budgets_backend/utils"
	"github.com/shopspring/decimal"
)

func newRolledUpMaterial(t *testing.T, qty decimal.Decimal) (models.AggregatePath, *models.LineItem) {
	t.Helper()
	_, project := newTestProject(t)
	path := plainPath(project.ID)
	mat, err := models.CreateMaterial(context.Background(), path, &models.NewLineItem{
		Name: "Concrete mix", Unit: "m3", Quantity: qty, HasSubMaterials: true,
	})
	if err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}
	return path, mat
}

// A rolled-up material starts at zero and moves only through its
// children: parent subtotal is the sum of child extendeds, parent cost
// is that sum divided by the parent quantity, and the summary tracks
// the subtotal.
func TestSubMaterialRollup(t *testing.T) {
	ctx := context.Background()
	path, mat := newRolledUpMaterial(t, dec(10))

	if !mat.Subtotal.IsZero() || !mat.Cost.IsZero() {
		t.Fatalf("rolled-up material starts at subtotal=%s cost=%s, want zeros", mat.Subtotal, mat.Cost)
	}

	a, err := models.CreateSubMaterial(ctx, path, mat.ID, &models.NewSubMaterial{
		Name: "Cement", Quantity: dec(5), Cost: dec(100),
	})
	if err != nil {
		t.Fatalf("CreateSubMaterial: %v", err)
	}
	if _, err := models.CreateSubMaterial(ctx, path, mat.ID, &models.NewSubMaterial{
		Name: "Gravel", Quantity: dec(3), Cost: dec(50),
	}); err != nil {
		t.Fatalf("CreateSubMaterial: %v", err)
	}

	// 5*100 + 3*50 = 650, unit cost 650/10.
	got, err := models.GetMaterial(ctx, path, mat.ID)
	if err != nil {
		t.Fatalf("GetMaterial: %v", err)
	}
	if !got.Subtotal.Equal(dec(650)) {
		t.Fatalf("subtotal = %s, want 650", got.Subtotal)
	}
	if !got.Cost.Equal(dec(65)) {
		t.Fatalf("cost = %s, want 65", got.Cost)
	}
	sum := summaryMust(t, path.ProjectID, models.HierarchyBudget)
	if !sum.SumMaterials.Equal(dec(650)) {
		t.Fatalf("sumMaterials = %s, want 650", sum.SumMaterials)
	}

	// Shrink one child: 2*100 + 3*50 = 350.
	if _, err := models.UpdateSubMaterial(ctx, path, mat.ID, a.ID, &models.NewSubMaterial{
		Name: "Cement", Quantity: dec(2), Cost: dec(100),
	}); err != nil {
		t.Fatalf("UpdateSubMaterial: %v", err)
	}
	got, _ = models.GetMaterial(ctx, path, mat.ID)
	if !got.Subtotal.Equal(dec(350)) {
		t.Fatalf("subtotal = %s after update, want 350", got.Subtotal)
	}
	sum = summaryMust(t, path.ProjectID, models.HierarchyBudget)
	if !sum.SumMaterials.Equal(dec(350)) {
		t.Fatalf("sumMaterials = %s after update, want 350", sum.SumMaterials)
	}

	// Delete the remaining driver of 200: 3*50 = 150 stays.
	if err := models.DeleteSubMaterial(ctx, path, mat.ID, a.ID); err != nil {
		t.Fatalf("DeleteSubMaterial: %v", err)
	}
	got, _ = models.GetMaterial(ctx, path, mat.ID)
	if !got.Subtotal.Equal(dec(150)) {
		t.Fatalf("subtotal = %s after delete, want 150", got.Subtotal)
	}
	if !got.Cost.Equal(dec(15)) {
		t.Fatalf("cost = %s after delete, want 15", got.Cost)
	}
	// Deleting an absent child changes nothing.
	if err := models.DeleteSubMaterial(ctx, path, mat.ID, a.ID); err != nil {
		t.Fatalf("repeat DeleteSubMaterial: %v", err)
	}
	sum = summaryMust(t, path.ProjectID, models.HierarchyBudget)
	if !sum.SumMaterials.Equal(dec(150)) {
		t.Fatalf("sumMaterials = %s, want 150", sum.SumMaterials)
	}
}

// Editing the parent of a rolled-up material never disturbs the rollup:
// the subtotal stays derived from the children and the summary does not
// move.
func TestRolledUpParentEditKeepsSubtotal(t *testing.T) {
	ctx := context.Background()
	path, mat := newRolledUpMaterial(t, dec(10))

	if _, err := models.CreateSubMaterial(ctx, path, mat.ID, &models.NewSubMaterial{
		Name: "Cement", Quantity: dec(4), Cost: dec(25),
	}); err != nil {
		t.Fatalf("CreateSubMaterial: %v", err)
	}

	if _, err := models.UpdateMaterial(ctx, path, mat.ID, &models.NewLineItem{
		Name: "Concrete mix", Unit: "m3", Quantity: dec(20), Cost: dec(9999), HasSubMaterials: true,
	}); err != nil {
		t.Fatalf("UpdateMaterial: %v", err)
	}

	got, _ := models.GetMaterial(ctx, path, mat.ID)
	if !got.Subtotal.Equal(dec(100)) {
		t.Fatalf("subtotal = %s, want 100 (rollup untouched)", got.Subtotal)
	}
	sum := summaryMust(t, path.ProjectID, models.HierarchyBudget)
	if !sum.SumMaterials.Equal(dec(100)) {
		t.Fatalf("sumMaterials = %s, want 100", sum.SumMaterials)
	}
}

// Zero parent quantity leaves the unit cost at zero rather than
// dividing.
func TestSubMaterialZeroParentQuantity(t *testing.T) {
	ctx := context.Background()
	path, mat := newRolledUpMaterial(t, decimal.Zero)

	if _, err := models.CreateSubMaterial(ctx, path, mat.ID, &models.NewSubMaterial{
		Name: "Cement", Quantity: dec(2), Cost: dec(30),
	}); err != nil {
		t.Fatalf("CreateSubMaterial: %v", err)
	}
	got, _ := models.GetMaterial(ctx, path, mat.ID)
	if !got.Subtotal.Equal(dec(60)) {
		t.Fatalf("subtotal = %s, want 60", got.Subtotal)
	}
	if !got.Cost.IsZero() {
		t.Fatalf("cost = %s with zero quantity, want 0", got.Cost)
	}
}

func TestSubMaterialMissingParent(t *testing.T) {
	ctx := context.Background()
	_, project := newTestProject(t)
	path := plainPath(project.ID)

	_, err := models.CreateSubMaterial(ctx, path, "ghost", &models.NewSubMaterial{Name: "Cement", Quantity: dec(1), Cost: dec(1)})
	if !errors.Is(err, utils.ErrorAggregateMissing) {
		t.Fatalf("expected ErrorAggregateMissing, got %v", err)
	}
	subs, err := models.ListSubMaterials(ctx, path, "ghost")
	if err != nil {
		t.Fatalf("ListSubMaterials: %v", err)
	}
	if len(subs) != 0 {
		t.Fatalf("child written despite missing parent")
	}
}

// Deleting a material with children drains them before the final
// decrement+delete batch.
func TestDeleteMaterialRemovesChildren(t *testing.T) {
	ctx := context.Background()
	path, mat := newRolledUpMaterial(t, dec(1))

	for i := 0; i < 3; i++ {
		if _, err := models.CreateSubMaterial(ctx, path, mat.ID, &models.NewSubMaterial{
			Name: "child", Quantity: dec(1), Cost: dec(10),
		}); err != nil {
			t.Fatalf("CreateSubMaterial: %v", err)
		}
	}
	if err := models.DeleteMaterial(ctx, path, mat.ID); err != nil {
		t.Fatalf("DeleteMaterial: %v", err)
	}

	subs, _ := models.ListSubMaterials(ctx, path, mat.ID)
	if len(subs) != 0 {
		t.Fatalf("%d orphaned children left behind", len(subs))
	}
	sum := summaryMust(t, path.ProjectID, models.HierarchyBudget)
	if !sum.SumMaterials.IsZero() {
		t.Fatalf("sumMaterials = %s after delete, want 0", sum.SumMaterials)
	}
}
