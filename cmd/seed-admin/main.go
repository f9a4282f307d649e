// seed-admin creates or updates the console admin user.
//
// Usage (from backend directory):
//   FIRESTORE_PROJECT_ID=... go run ./cmd/seed-admin
//
// Override the defaults with ADMIN_USERNAME / ADMIN_PASSWORD.
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/budgets_backend/config"
	"bitbucket.org/mmdatafocus/budgets_backend/models"
)

const (
	defaultAdminUsername = "budgetsAdmin"
	defaultAdminPassword = "Budge$tsAdmin"
	adminName            = "Budgets Admin"
)

func main() {
	ctx := context.Background()
	config.ConnectStoreWithRetry()

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = defaultAdminUsername
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = defaultAdminPassword
	}

	user, err := models.UpsertUser(ctx, username, adminName, password, models.UserRoleAdmin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed admin: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("admin user %q ready (id %s)\n", user.Username, user.ID)
}
