package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/budgets_backend/models/reports"
	"github.com/gin-gonic/gin"
)

// ExportBudgetWorkbook streams the project's budget workbook as xlsx.
func ExportBudgetWorkbook(c *gin.Context) {
	f, err := reports.BuildBudgetWorkbook(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="budget.xlsx"`)
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
