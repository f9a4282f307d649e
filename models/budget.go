package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/budgets_backend/config"
	"bitbucket.org/mmdatafocus/budgets_backend/store"
	"bitbucket.org/mmdatafocus/budgets_backend/utils"
	"github.com/shopspring/decimal"
)

// BudgetSummary is the per-project summary document holding the four
// running totals for one hierarchy. The sum fields are derived data:
// they move only by line-item deltas (or the cascade's compensating
// decrement) and are never written absolutely outside a rebuild.
type BudgetSummary struct {
	ProjectID       string          `json:"projectId"`
	Hierarchy       Hierarchy       `json:"hierarchy"`
	SumMaterials    decimal.Decimal `json:"sumMaterials"`
	SumLabors       decimal.Decimal `json:"sumLabors"`
	SumSubcontracts decimal.Decimal `json:"sumSubcontracts"`
	SumOthers       decimal.Decimal `json:"sumOthers"`
	Exchange        decimal.Decimal `json:"exchange"`
	AdminFee        decimal.Decimal `json:"adminFee"`
	CreationDate    time.Time       `json:"creationDate"`
}

// Total is the sum of the four running totals.
func (b *BudgetSummary) Total() decimal.Decimal {
	return b.SumMaterials.Add(b.SumLabors).Add(b.SumSubcontracts).Add(b.SumOthers)
}

func budgetSummaryFromDoc(projectID string, h Hierarchy, data map[string]any) *BudgetSummary {
	return &BudgetSummary{
		ProjectID:       projectID,
		Hierarchy:       h,
		SumMaterials:    utils.DocDecimal(data, FieldSumMaterials),
		SumLabors:       utils.DocDecimal(data, FieldSumLabors),
		SumSubcontracts: utils.DocDecimal(data, FieldSumSubcontracts),
		SumOthers:       utils.DocDecimal(data, FieldSumOthers),
		Exchange:        utils.DocDecimal(data, FieldExchange),
		AdminFee:        utils.DocDecimal(data, FieldAdminFee),
		CreationDate:    utils.DocTime(data, FieldCreationDate),
	}
}

func newSummaryDoc(now time.Time) map[string]any {
	return map[string]any{
		FieldSumMaterials:    decimal.Zero,
		FieldSumLabors:       decimal.Zero,
		FieldSumSubcontracts: decimal.Zero,
		FieldSumOthers:       decimal.Zero,
		FieldExchange:        decimal.NewFromInt(1),
		FieldAdminFee:        decimal.Zero,
		FieldCreationDate:    now,
	}
}

func GetBudgetSummary(ctx context.Context, projectID string, h Hierarchy) (*BudgetSummary, error) {
	s := config.GetStore()
	doc, err := s.Get(ctx, SummaryPath(projectID, h))
	if err != nil {
		if errors.Is(err, store.ErrorNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, utils.ClassifyStoreError(err)
	}
	return budgetSummaryFromDoc(projectID, h, doc.Data), nil
}

// BudgetSummaryFields are the caller-editable summary fields. They are
// display-time multipliers for reporting and deliberately excluded from
// sum propagation; writing them never touches a sum field.
type BudgetSummaryFields struct {
	Exchange *decimal.Decimal
	AdminFee *decimal.Decimal
}

func UpdateBudgetSummaryFields(ctx context.Context, projectID string, h Hierarchy, fields *BudgetSummaryFields) (*BudgetSummary, error) {
	s := config.GetStore()
	logger := config.GetLogger()

	var updates []store.Update
	if fields.Exchange != nil {
		updates = append(updates, store.Update{Field: FieldExchange, Value: *fields.Exchange})
	}
	if fields.AdminFee != nil {
		updates = append(updates, store.Update{Field: FieldAdminFee, Value: *fields.AdminFee})
	}

	var out *BudgetSummary
	err := s.RunTransaction(ctx, func(tx store.Tx) error {
		doc, err := tx.Get(SummaryPath(projectID, h))
		if err != nil {
			if errors.Is(err, store.ErrorNotFound) {
				return utils.ErrorAggregateMissing
			}
			return err
		}
		if len(updates) > 0 {
			tx.Update(SummaryPath(projectID, h), updates)
		}
		out = budgetSummaryFromDoc(projectID, h, doc.Data)
		if fields.Exchange != nil {
			out.Exchange = *fields.Exchange
		}
		if fields.AdminFee != nil {
			out.AdminFee = *fields.AdminFee
		}
		return nil
	})
	if err != nil {
		config.LogError(logger, "budget.go", "UpdateBudgetSummaryFields", SummaryPath(projectID, h), fields, err)
		return nil, utils.ClassifyStoreError(err)
	}
	return out, nil
}
