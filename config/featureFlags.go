package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EnforceBudgetOpen gates line-item and activity mutations on the
// project's budgetOpen flag. Enabled by default; set
// ENFORCE_BUDGET_OPEN=false to let back-office tools edit closed
// budgets.
func EnforceBudgetOpen() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("ENFORCE_BUDGET_OPEN")))
	if v == "" {
		return true
	}
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// CacheLifespan is the TTL for cached budget summaries.
//
// Set via env:
// - CACHE_LIFESPAN=<hours> (default 1)
func CacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}
