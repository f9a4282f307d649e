package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/budgets_backend/models"
	"bitbucket.org/mmdatafocus/budgets_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type lineItemRequest struct {
	Name            string          `json:"name" validate:"required"`
	Unit            string          `json:"unit"`
	Quantity        decimal.Decimal `json:"quantity"`
	Cost            decimal.Decimal `json:"cost"`
	HasSubMaterials bool            `json:"hasSubMaterials"`
}

func (r *lineItemRequest) toInput() *models.NewLineItem {
	return &models.NewLineItem{
		Name:            r.Name,
		Unit:            r.Unit,
		Quantity:        r.Quantity,
		Cost:            r.Cost,
		HasSubMaterials: r.HasSubMaterials,
	}
}

func CreateLineItem(h models.Hierarchy) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := itemKind(c)
		if !ok {
			return
		}
		var req lineItemRequest
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
		item, err := models.CreateLineItem(c.Request.Context(), path, kind, req.toInput())
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateSummaryCache(path.ProjectID)
		c.JSON(http.StatusCreated, item)
	}
}

func UpdateLineItem(h models.Hierarchy) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := itemKind(c)
		if !ok {
			return
		}
		var req lineItemRequest
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
		item, err := models.UpdateLineItem(c.Request.Context(), path, kind, c.Param("itemId"), req.toInput())
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateSummaryCache(path.ProjectID)
		c.JSON(http.StatusOK, item)
	}
}

func DeleteLineItem(h models.Hierarchy) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := itemKind(c)
		if !ok {
			return
		}
		path := aggregatePath(c, h)
		if err := models.EnsureBudgetOpen(c.Request.Context(), path.ProjectID); err != nil {
			respondError(c, err)
			return
		}
		var err error
		if kind == models.KindMaterial {
			// Materials may own subMaterials children; the specialized
			// delete drains them first.
			err = models.DeleteMaterial(c.Request.Context(), path, c.Param("itemId"))
		} else {
			err = models.DeleteLineItem(c.Request.Context(), path, kind, c.Param("itemId"))
		}
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateSummaryCache(path.ProjectID)
		c.Status(http.StatusNoContent)
	}
}

func GetLineItem(h models.Hierarchy) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := itemKind(c)
		if !ok {
			return
		}
		item, err := models.GetLineItem(c.Request.Context(), aggregatePath(c, h), kind, c.Param("itemId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func ListLineItems(h models.Hierarchy) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, ok := itemKind(c)
		if !ok {
			return
		}
		items, err := models.ListLineItems(c.Request.Context(), aggregatePath(c, h), kind)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}
