package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/budgets_backend/config"
	"bitbucket.org/mmdatafocus/budgets_backend/store"
	"bitbucket.org/mmdatafocus/budgets_backend/utils"
	"github.com/shopspring/decimal"
)

// Activity is one extra-budget work package. It carries the same four
// running totals as the project summary, so extra-budget line-item
// deltas fan out to both the activity and the project summary. Its
// exchange and adminFee are per-activity overrides applied at report
// time only.
type Activity struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Date            time.Time       `json:"date"`
	Exchange        decimal.Decimal `json:"exchange"`
	AdminFee        decimal.Decimal `json:"adminFee"`
	SumMaterials    decimal.Decimal `json:"sumMaterials"`
	SumLabors       decimal.Decimal `json:"sumLabors"`
	SumSubcontracts decimal.Decimal `json:"sumSubcontracts"`
	SumOthers       decimal.Decimal `json:"sumOthers"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type NewActivity struct {
	Name     string          `json:"name"`
	Date     time.Time       `json:"date"`
	Exchange decimal.Decimal `json:"exchange"`
	AdminFee decimal.Decimal `json:"adminFee"`
}

const fieldDate = "date"

func (a *Activity) Total() decimal.Decimal {
	return a.SumMaterials.Add(a.SumLabors).Add(a.SumSubcontracts).Add(a.SumOthers)
}

func activityFromDoc(id string, data map[string]any) *Activity {
	return &Activity{
		ID:              id,
		Name:            utils.DocString(data, fieldName),
		Date:            utils.DocTime(data, fieldDate),
		Exchange:        utils.DocDecimal(data, FieldExchange),
		AdminFee:        utils.DocDecimal(data, FieldAdminFee),
		SumMaterials:    utils.DocDecimal(data, FieldSumMaterials),
		SumLabors:       utils.DocDecimal(data, FieldSumLabors),
		SumSubcontracts: utils.DocDecimal(data, FieldSumSubcontracts),
		SumOthers:       utils.DocDecimal(data, FieldSumOthers),
		CreatedAt:       utils.DocTime(data, fieldCreatedAt),
		UpdatedAt:       utils.DocTime(data, fieldUpdatedAt),
	}
}

func activityPath(projectID, activityID string) string {
	return SummaryPath(projectID, HierarchyExtra) + "/" + collectionActivities + "/" + activityID
}

func activitiesCollection(projectID string) string {
	return SummaryPath(projectID, HierarchyExtra) + "/" + collectionActivities
}

// CreateActivity writes a new activity with zeroed sums. The extra
// budget summary must already exist; nothing is incremented because an
// empty activity contributes nothing.
func CreateActivity(ctx context.Context, projectID string, input *NewActivity) (*Activity, error) {
	logger := config.GetLogger()
	s := config.GetStore()
	now := time.Now().UTC()
	act := &Activity{
		ID:        s.NewDocID(activitiesCollection(projectID)),
		Name:      input.Name,
		Date:      input.Date,
		Exchange:  input.Exchange,
		AdminFee:  input.AdminFee,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.RunTransaction(ctx, func(tx store.Tx) error {
		if _, err := tx.Get(SummaryPath(projectID, HierarchyExtra)); err != nil {
			if errors.Is(err, store.ErrorNotFound) {
				return fmt.Errorf("%w: %s", utils.ErrorAggregateMissing, SummaryPath(projectID, HierarchyExtra))
			}
			return err
		}
		tx.Set(activityPath(projectID, act.ID), map[string]any{
			fieldName:            act.Name,
			fieldDate:            act.Date,
			FieldExchange:        act.Exchange,
			FieldAdminFee:        act.AdminFee,
			FieldSumMaterials:    decimal.Zero,
			FieldSumLabors:       decimal.Zero,
			FieldSumSubcontracts: decimal.Zero,
			FieldSumOthers:       decimal.Zero,
			fieldCreatedAt:       act.CreatedAt,
			fieldUpdatedAt:       act.UpdatedAt,
		})
		return nil
	})
	if err != nil {
		config.LogError(logger, "activity.go", "CreateActivity", projectID, input, err)
		return nil, utils.ClassifyStoreError(err)
	}
	return act, nil
}

// UpdateActivity edits the non-sum activity fields. The sums belong to
// the propagation engine and are never written here.
func UpdateActivity(ctx context.Context, projectID, activityID string, input *NewActivity) (*Activity, error) {
	logger := config.GetLogger()
	s := config.GetStore()
	path := activityPath(projectID, activityID)

	var out *Activity
	err := s.RunTransaction(ctx, func(tx store.Tx) error {
		doc, err := tx.Get(path)
		if err != nil {
			if errors.Is(err, store.ErrorNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}
		now := time.Now().UTC()
		tx.Update(path, []store.Update{
			{Field: fieldName, Value: input.Name},
			{Field: fieldDate, Value: input.Date},
			{Field: FieldExchange, Value: input.Exchange},
			{Field: FieldAdminFee, Value: input.AdminFee},
			{Field: fieldUpdatedAt, Value: now},
		})
		out = activityFromDoc(activityID, doc.Data)
		out.Name = input.Name
		out.Date = input.Date
		out.Exchange = input.Exchange
		out.AdminFee = input.AdminFee
		out.UpdatedAt = now
		return nil
	})
	if err != nil {
		config.LogError(logger, "activity.go", "UpdateActivity", path, input, err)
		return nil, utils.ClassifyStoreError(err)
	}
	return out, nil
}

func GetActivity(ctx context.Context, projectID, activityID string) (*Activity, error) {
	s := config.GetStore()
	doc, err := s.Get(ctx, activityPath(projectID, activityID))
	if err != nil {
		if errors.Is(err, store.ErrorNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, utils.ClassifyStoreError(err)
	}
	return activityFromDoc(activityID, doc.Data), nil
}

func ListActivities(ctx context.Context, projectID string) ([]*Activity, error) {
	s := config.GetStore()
	docs, err := s.Documents(ctx, activitiesCollection(projectID))
	if err != nil {
		return nil, utils.ClassifyStoreError(err)
	}
	out := make([]*Activity, 0, len(docs))
	for _, doc := range docs {
		out = append(out, activityFromDoc(doc.ID, doc.Data))
	}
	return out, nil
}
