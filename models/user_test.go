package models_test

import (
	"context"
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/budgets_backend/config"
	"bitbucket.org/mmdatafocus/budgets_backend/models"
	"bitbucket.org/mmdatafocus/budgets_backend/store"
	"bitbucket.org/mmdatafocus/budgets_backend/utils"
)

func TestUpsertUserCreateAndReplace(t *testing.T) {
	ctx := context.Background()
	config.SetStore(store.NewMemoryStore())

	created, err := models.UpsertUser(ctx, "aung", "Aung Kyaw", "first-pass", models.UserRoleNormal)
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if err := utils.ComparePassword(created.Password, "first-pass"); err != nil {
		t.Fatalf("stored password does not match: %v", err)
	}

	// Same username replaces in place: same id, new credentials.
	replaced, err := models.UpsertUser(ctx, "aung", "Aung Kyaw", "second-pass", models.UserRoleAdmin)
	if err != nil {
		t.Fatalf("UpsertUser replace: %v", err)
	}
	if replaced.ID != created.ID {
		t.Fatalf("replace changed id: %s -> %s", created.ID, replaced.ID)
	}
	if replaced.Role != models.UserRoleAdmin {
		t.Fatalf("role = %s, want admin", replaced.Role)
	}

	got, err := models.GetUserByUsername(ctx, "aung")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if err := utils.ComparePassword(got.Password, "second-pass"); err != nil {
		t.Fatalf("replacement password not stored: %v", err)
	}

	if _, err := models.GetUserByUsername(ctx, "nobody"); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected ErrorRecordNotFound, got %v", err)
	}
}
