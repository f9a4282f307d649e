package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/budgets_backend/config"
	"bitbucket.org/mmdatafocus/budgets_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func summaryCacheKey(projectID string, h models.Hierarchy) string {
	return "BudgetSummary:" + projectID + ":" + string(h)
}

// invalidateSummaryCache drops both hierarchies' cached summaries for a
// project. Mutating handlers call it after a successful write.
func invalidateSummaryCache(projectID string) {
	config.RemoveRedisKey(summaryCacheKey(projectID, models.HierarchyBudget))
	config.RemoveRedisKey(summaryCacheKey(projectID, models.HierarchyExtra))
}

// GetBudgetSummary serves the summary document, read-through cached.
// The cache is best effort; a cold or absent Redis just means a store
// read.
func GetBudgetSummary(h models.Hierarchy) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.Param("projectId")
		key := summaryCacheKey(projectID, h)

		var cached models.BudgetSummary
		if hit, err := config.GetRedisObject(key, &cached); err == nil && hit {
			c.JSON(http.StatusOK, &cached)
			return
		}

		summary, err := models.GetBudgetSummary(c.Request.Context(), projectID, h)
		if err != nil {
			respondError(c, err)
			return
		}
		config.SetRedisObject(key, summary, config.CacheLifespan())
		c.JSON(http.StatusOK, summary)
	}
}

type updateSummaryRequest struct {
	Exchange *decimal.Decimal `json:"exchange"`
	AdminFee *decimal.Decimal `json:"adminFee"`
}

// UpdateBudgetSummary edits the display-time multiplier fields. Sum
// fields are owned by the propagation engine and are not editable here.
func UpdateBudgetSummary(h models.Hierarchy) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateSummaryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		projectID := c.Param("projectId")
		summary, err := models.UpdateBudgetSummaryFields(c.Request.Context(), projectID, h, &models.BudgetSummaryFields{
			Exchange: req.Exchange,
			AdminFee: req.AdminFee,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateSummaryCache(projectID)
		c.JSON(http.StatusOK, summary)
	}
}
