package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/budgets_backend/models"
	"bitbucket.org/mmdatafocus/budgets_backend/utils"
	"bitbucket.org/mmdatafocus/budgets_backend/workflow"
	"github.com/gin-gonic/gin"
)

type createProjectRequest struct {
	Name     string `json:"name" validate:"required"`
	Client   string `json:"client"`
	Location string `json:"location"`
	Status   string `json:"status"`
}

func CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	project, err := models.CreateProject(c.Request.Context(), &models.NewProject{
		Name:     req.Name,
		Client:   req.Client,
		Location: req.Location,
		Status:   req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func UpdateProject(c *gin.Context) {
	var fields models.ProjectFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	project, err := models.UpdateProject(c.Request.Context(), c.Param("projectId"), &fields)
	if err != nil {
		respondError(c, err)
		return
	}
	invalidateSummaryCache(project.ID)
	c.JSON(http.StatusOK, project)
}

func GetProject(c *gin.Context) {
	project, err := models.GetProject(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func ListProjects(c *gin.Context) {
	projects, err := models.ListProjects(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func DeleteProject(c *gin.Context) {
	projectID := c.Param("projectId")
	if err := workflow.DeleteProject(c.Request.Context(), projectID); err != nil {
		respondError(c, err)
		return
	}
	invalidateSummaryCache(projectID)
	c.Status(http.StatusNoContent)
}

// RebuildProjectSummaries is the operational recovery endpoint (admin
// only) behind cmd/rebuild-summaries.
func RebuildProjectSummaries(c *gin.Context) {
	isAdmin, _ := utils.GetIsAdminFromContext(c.Request.Context())
	if !isAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return
	}
	projectID := c.Param("projectId")
	drifts, err := workflow.RebuildProjectSummaries(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	invalidateSummaryCache(projectID)
	c.JSON(http.StatusOK, gin.H{"drifts": drifts})
}
