package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/budgets_backend/models"
	"bitbucket.org/mmdatafocus/budgets_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type subMaterialRequest struct {
	Name     string          `json:"name" validate:"required"`
	Unit     string          `json:"unit"`
	Quantity decimal.Decimal `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
}

func (r *subMaterialRequest) toInput() *models.NewSubMaterial {
	return &models.NewSubMaterial{Name: r.Name, Unit: r.Unit, Quantity: r.Quantity, Cost: r.Cost}
}

func CreateSubMaterial(h models.Hierarchy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !materialKind(c) {
			return
		}
		var req subMaterialRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		path := aggregatePath(c, h)
		if err := models.EnsureBudgetOpen(c.Request.Context(), path.ProjectID); err != nil {
			respondError(c, err)
			return
		}
		sub, err := models.CreateSubMaterial(c.Request.Context(), path, c.Param("itemId"), req.toInput())
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateSummaryCache(path.ProjectID)
		c.JSON(http.StatusCreated, sub)
	}
}

func UpdateSubMaterial(h models.Hierarchy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !materialKind(c) {
			return
		}
		var req subMaterialRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		path := aggregatePath(c, h)
		if err := models.EnsureBudgetOpen(c.Request.Context(), path.ProjectID); err != nil {
			respondError(c, err)
			return
		}
		sub, err := models.UpdateSubMaterial(c.Request.Context(), path, c.Param("itemId"), c.Param("subId"), req.toInput())
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateSummaryCache(path.ProjectID)
		c.JSON(http.StatusOK, sub)
	}
}

func DeleteSubMaterial(h models.Hierarchy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !materialKind(c) {
			return
		}
		path := aggregatePath(c, h)
		if err := models.EnsureBudgetOpen(c.Request.Context(), path.ProjectID); err != nil {
			respondError(c, err)
			return
		}
		if err := models.DeleteSubMaterial(c.Request.Context(), path, c.Param("itemId"), c.Param("subId")); err != nil {
			respondError(c, err)
			return
		}
		invalidateSummaryCache(path.ProjectID)
		c.Status(http.StatusNoContent)
	}
}

func ListSubMaterials(h models.Hierarchy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !materialKind(c) {
			return
		}
		subs, err := models.ListSubMaterials(c.Request.Context(), aggregatePath(c, h), c.Param("itemId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, subs)
	}
}
