// rebuild-summaries recomputes a project's budget summaries from the
// line items underneath and overwrites any drifted sum field. Use it to
// repair a project after an interrupted cascading delete.
//
// Usage:
//   FIRESTORE_PROJECT_ID=... go run ./cmd/rebuild-summaries <projectId> [<projectId>...]
//   FIRESTORE_PROJECT_ID=... go run ./cmd/rebuild-summaries -all
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/budgets_backend/config"
	"bitbucket.org/mmdatafocus/budgets_backend/models"
	"bitbucket.org/mmdatafocus/budgets_backend/workflow"
)

func main() {
	all := flag.Bool("all", false, "rebuild every project")
	flag.Parse()

	ctx := context.Background()
	config.ConnectStoreWithRetry()

	ids := flag.Args()
	if *all {
		projects, err := models.ListProjects(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list projects: %v\n", err)
			os.Exit(1)
		}
		ids = ids[:0]
		for _, p := range projects {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "nothing to do: pass project ids or -all")
		os.Exit(2)
	}

	exitCode := 0
	for _, id := range ids {
		drifts, err := workflow.RebuildProjectSummaries(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "project %s: %v\n", id, err)
			exitCode = 1
			continue
		}
		if len(drifts) == 0 {
			fmt.Printf("project %s: clean\n", id)
			continue
		}
		for _, d := range drifts {
			fmt.Printf("project %s: %s %s %s -> %s\n", id, d.Path, d.Field, d.Stored, d.Actual)
		}
	}
	os.Exit(exitCode)
}
