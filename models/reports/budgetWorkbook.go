// Package reports builds exportable views of a project's budgets.
package reports

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/budgets_backend/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	sheetBudget = "Budget"
	sheetExtra  = "Extra Budget"
)

// BuildBudgetWorkbook renders both budget hierarchies of a project into
// an xlsx workbook. Admin fee and exchange are applied here, at report
// time, as display multipliers over the stored sums; they never feed
// back into the propagation engine.
func BuildBudgetWorkbook(ctx context.Context, projectID string) (*excelize.File, error) {
	project, err := models.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheetBudget)
	if _, err := f.NewSheet(sheetExtra); err != nil {
		return nil, err
	}

	if err := writePlainBudgetSheet(ctx, f, project); err != nil {
		return nil, err
	}
	if err := writeExtraBudgetSheet(ctx, f, project); err != nil {
		return nil, err
	}
	return f, nil
}

func writePlainBudgetSheet(ctx context.Context, f *excelize.File, project *models.Project) error {
	summary, err := models.GetBudgetSummary(ctx, project.ID, models.HierarchyBudget)
	if err != nil {
		return err
	}
	path := models.AggregatePath{ProjectID: project.ID, Hierarchy: models.HierarchyBudget}

	f.SetCellValue(sheetBudget, "A1", project.Name)
	f.SetCellValue(sheetBudget, "B1", project.Client)
	row := 3
	for _, kind := range models.LineItemKinds {
		items, err := models.ListLineItems(ctx, path, kind)
		if err != nil {
			return err
		}
		row = writeItemSection(f, sheetBudget, row, kind, items)
	}

	row++
	writeTotals(f, sheetBudget, row, summary.Total(), summary.AdminFee, summary.Exchange)
	return nil
}

func writeExtraBudgetSheet(ctx context.Context, f *excelize.File, project *models.Project) error {
	summary, err := models.GetBudgetSummary(ctx, project.ID, models.HierarchyExtra)
	if err != nil {
		return err
	}
	activities, err := models.ListActivities(ctx, project.ID)
	if err != nil {
		return err
	}

	f.SetCellValue(sheetExtra, "A1", project.Name)
	f.SetCellValue(sheetExtra, "B1", project.Client)
	row := 3
	for _, act := range activities {
		f.SetCellValue(sheetExtra, "A"+fmt.Sprint(row), act.Name)
		f.SetCellValue(sheetExtra, "B"+fmt.Sprint(row), act.Date.Format("2006-01-02"))
		row++
		path := models.AggregatePath{ProjectID: project.ID, Hierarchy: models.HierarchyExtra, ActivityID: act.ID}
		for _, kind := range models.LineItemKinds {
			items, err := models.ListLineItems(ctx, path, kind)
			if err != nil {
				return err
			}
			row = writeItemSection(f, sheetExtra, row, kind, items)
		}
		// Per-activity overrides take effect here only.
		writeTotals(f, sheetExtra, row, act.Total(), act.AdminFee, act.Exchange)
		row += 2
	}

	row++
	writeTotals(f, sheetExtra, row, summary.Total(), summary.AdminFee, summary.Exchange)
	return nil
}

func writeItemSection(f *excelize.File, sheet string, row int, kind models.LineItemKind, items []*models.LineItem) int {
	if len(items) == 0 {
		return row
	}
	f.SetCellValue(sheet, "A"+fmt.Sprint(row), string(kind))
	row++
	for _, item := range items {
		f.SetCellValue(sheet, "A"+fmt.Sprint(row), item.Name)
		f.SetCellValue(sheet, "B"+fmt.Sprint(row), item.Unit)
		f.SetCellValue(sheet, "C"+fmt.Sprint(row), item.Quantity.InexactFloat64())
		f.SetCellValue(sheet, "D"+fmt.Sprint(row), item.Cost.InexactFloat64())
		f.SetCellValue(sheet, "E"+fmt.Sprint(row), item.Subtotal.InexactFloat64())
		row++
	}
	return row
}

func writeTotals(f *excelize.File, sheet string, row int, total, adminFee, exchange decimal.Decimal) {
	fee := total.Mul(adminFee).Div(decimal.NewFromInt(100))
	grand := total.Add(fee)
	f.SetCellValue(sheet, "A"+fmt.Sprint(row), "Total")
	f.SetCellValue(sheet, "E"+fmt.Sprint(row), total.InexactFloat64())
	f.SetCellValue(sheet, "A"+fmt.Sprint(row+1), "Admin Fee")
	f.SetCellValue(sheet, "E"+fmt.Sprint(row+1), fee.InexactFloat64())
	if !exchange.IsZero() && !exchange.Equal(decimal.NewFromInt(1)) {
		f.SetCellValue(sheet, "A"+fmt.Sprint(row+2), "Grand Total (exchanged)")
		f.SetCellValue(sheet, "E"+fmt.Sprint(row+2), grand.Mul(exchange).InexactFloat64())
	} else {
		f.SetCellValue(sheet, "A"+fmt.Sprint(row+2), "Grand Total")
		f.SetCellValue(sheet, "E"+fmt.Sprint(row+2), grand.InexactFloat64())
	}
}
