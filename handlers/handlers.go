// Package handlers is the REST surface the browser client talks to:
// one route per entity-kind and CRUD verb, each delegating to the
// models/workflow layer and translating the error taxonomy to HTTP.
package handlers

import (
	"errors"
	"net/http"

	"bitbucket.org/mmdatafocus/budgets_backend/models"
	"bitbucket.org/mmdatafocus/budgets_backend/utils"
	"github.com/gin-gonic/gin"
)

// respondError maps the domain error taxonomy onto status codes. Store
// failures surface as 502 so the client can offer a retry; aggregate
// errors are the caller's fault and are not retryable as-is.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound), errors.Is(err, utils.ErrorAggregateMissing):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorBudgetClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorStore):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// aggregatePath builds the path value for the route's hierarchy from
// URL params. Extra-budget routes carry :activityId.
func aggregatePath(c *gin.Context, h models.Hierarchy) models.AggregatePath {
	return models.AggregatePath{
		ProjectID:  c.Param("projectId"),
		Hierarchy:  h,
		ActivityID: c.Param("activityId"),
	}
}

func itemKind(c *gin.Context) (models.LineItemKind, bool) {
	kind := models.LineItemKind(c.Param("kind"))
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown line item kind"})
		return kind, false
	}
	return kind, true
}

// materialKind guards the sub-material routes, which are mounted under
// the generic :kind wildcard but only exist for materials.
func materialKind(c *gin.Context) bool {
	if models.LineItemKind(c.Param("kind")) != models.KindMaterial {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sub-materials exist only under materials"})
		return false
	}
	return true
}
