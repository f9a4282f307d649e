package handlers

import (
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/budgets_backend/models"
	"bitbucket.org/mmdatafocus/budgets_backend/utils"
	"bitbucket.org/mmdatafocus/budgets_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type activityRequest struct {
	Name     string          `json:"name" validate:"required"`
	Date     time.Time       `json:"date"`
	Exchange decimal.Decimal `json:"exchange"`
	AdminFee decimal.Decimal `json:"adminFee"`
}

func (r *activityRequest) toInput() *models.NewActivity {
	return &models.NewActivity{
		Name:     r.Name,
		Date:     r.Date,
		Exchange: r.Exchange,
		AdminFee: r.AdminFee,
	}
}

func CreateActivity(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	projectID := c.Param("projectId")
	if err := models.EnsureBudgetOpen(c.Request.Context(), projectID); err != nil {
		respondError(c, err)
		return
	}
	act, err := models.CreateActivity(c.Request.Context(), projectID, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, act)
}

func UpdateActivity(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	projectID := c.Param("projectId")
	if err := models.EnsureBudgetOpen(c.Request.Context(), projectID); err != nil {
		respondError(c, err)
		return
	}
	act, err := models.UpdateActivity(c.Request.Context(), projectID, c.Param("activityId"), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, act)
}

// DeleteActivity routes to the cascading delete workflow: the activity,
// every descendant line item and sub-material, and the compensating
// summary decrement.
func DeleteActivity(c *gin.Context) {
	projectID := c.Param("projectId")
	if err := models.EnsureBudgetOpen(c.Request.Context(), projectID); err != nil {
		respondError(c, err)
		return
	}
	if err := workflow.DeleteActivity(c.Request.Context(), projectID, c.Param("activityId")); err != nil {
		respondError(c, err)
		return
	}
	invalidateSummaryCache(projectID)
	c.Status(http.StatusNoContent)
}

func GetActivity(c *gin.Context) {
	act, err := models.GetActivity(c.Request.Context(), c.Param("projectId"), c.Param("activityId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, act)
}

func ListActivities(c *gin.Context) {
	acts, err := models.ListActivities(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acts)
}
