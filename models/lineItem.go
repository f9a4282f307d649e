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

// LineItem is one budget line of any kind. Subtotal is derived: always
// quantity*cost, except for a material with HasSubMaterials, where
// subtotal and cost roll up from the subMaterials children and the own
// quantity is only a unit-cost divisor (see subMaterial.go).
type LineItem struct {
	ID              string          `json:"id"`
	Kind            LineItemKind    `json:"kind"`
	Name            string          `json:"name"`
	Unit            string          `json:"unit,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	Cost            decimal.Decimal `json:"cost"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	HasSubMaterials bool            `json:"hasSubMaterials,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type NewLineItem struct {
	Name            string          `json:"name"`
	Unit            string          `json:"unit"`
	Quantity        decimal.Decimal `json:"quantity"`
	Cost            decimal.Decimal `json:"cost"`
	HasSubMaterials bool            `json:"hasSubMaterials"`
}

const (
	fieldName            = "name"
	fieldUnit            = "unit"
	fieldQuantity        = "quantity"
	fieldCost            = "cost"
	fieldSubtotal        = "subtotal"
	fieldHasSubMaterials = "hasSubMaterials"
	fieldCreatedAt       = "createdAt"
	fieldUpdatedAt       = "updatedAt"
)

func lineItemFromDoc(kind LineItemKind, id string, data map[string]any) *LineItem {
	return &LineItem{
		ID:              id,
		Kind:            kind,
		Name:            utils.DocString(data, fieldName),
		Unit:            utils.DocString(data, fieldUnit),
		Quantity:        utils.DocDecimal(data, fieldQuantity),
		Cost:            utils.DocDecimal(data, fieldCost),
		Subtotal:        utils.DocDecimal(data, fieldSubtotal),
		HasSubMaterials: utils.DocBool(data, fieldHasSubMaterials),
		CreatedAt:       utils.DocTime(data, fieldCreatedAt),
		UpdatedAt:       utils.DocTime(data, fieldUpdatedAt),
	}
}

func (item *LineItem) doc() map[string]any {
	return map[string]any{
		fieldName:            item.Name,
		fieldUnit:            item.Unit,
		fieldQuantity:        item.Quantity,
		fieldCost:            item.Cost,
		fieldSubtotal:        item.Subtotal,
		fieldHasSubMaterials: item.HasSubMaterials,
		fieldCreatedAt:       item.CreatedAt,
		fieldUpdatedAt:       item.UpdatedAt,
	}
}

// readAncestors loads every ancestor summary the path fans out to,
// mapping a missing document to ErrorAggregateMissing. Transaction
// reads must all happen before the first write, so callers invoke this
// up front.
func readAncestors(tx store.Tx, path AggregatePath) error {
	for _, anc := range path.Ancestors() {
		if _, err := tx.Get(anc); err != nil {
			if errors.Is(err, store.ErrorNotFound) {
				return fmt.Errorf("%w: %s", utils.ErrorAggregateMissing, anc)
			}
			return err
		}
	}
	return nil
}

// applyDelta moves every ancestor's sum field for the kind by delta.
// The ancestor is always moved by the observed delta, never set to an
// absolute value, so concurrent edits to sibling items compose through
// the store's atomic increment.
func applyDelta(tx store.Tx, path AggregatePath, kind LineItemKind, delta decimal.Decimal) {
	for _, anc := range path.Ancestors() {
		tx.Update(anc, []store.Update{store.IncrementField(kind.SumField(), delta)})
	}
}

// CreateLineItem writes a new line item and adds its subtotal to every
// ancestor summary in one transaction.
func CreateLineItem(ctx context.Context, path AggregatePath, kind LineItemKind, input *NewLineItem) (*LineItem, error) {
	logger := config.GetLogger()
	if err := path.Validate(); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown line item kind %q", kind)
	}
	if input.HasSubMaterials && kind != KindMaterial {
		return nil, fmt.Errorf("only materials can have sub-materials")
	}

	s := config.GetStore()
	now := time.Now().UTC()
	item := &LineItem{
		ID:              s.NewDocID(path.Collection(kind)),
		Kind:            kind,
		Name:            input.Name,
		Unit:            input.Unit,
		Quantity:        input.Quantity,
		Cost:            input.Cost,
		Subtotal:        input.Quantity.Mul(input.Cost),
		HasSubMaterials: input.HasSubMaterials,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if item.HasSubMaterials {
		// Rolled-up values start at zero until children arrive.
		item.Cost = decimal.Zero
		item.Subtotal = decimal.Zero
	}

	err := s.RunTransaction(ctx, func(tx store.Tx) error {
		if err := readAncestors(tx, path); err != nil {
			return err
		}
		applyDelta(tx, path, kind, item.Subtotal)
		tx.Set(path.ItemPath(kind, item.ID), item.doc())
		return nil
	})
	if err != nil {
		config.LogError(logger, "lineItem.go", "CreateLineItem", path.Collection(kind), input, err)
		return nil, utils.ClassifyStoreError(err)
	}
	return item, nil
}

// UpdateLineItem overwrites a line item and moves every ancestor sum by
// the observed subtotal delta in one transaction.
func UpdateLineItem(ctx context.Context, path AggregatePath, kind LineItemKind, id string, input *NewLineItem) (*LineItem, error) {
	logger := config.GetLogger()
	if err := path.Validate(); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown line item kind %q", kind)
	}

	s := config.GetStore()
	itemPath := path.ItemPath(kind, id)

	var out *LineItem
	err := s.RunTransaction(ctx, func(tx store.Tx) error {
		doc, err := tx.Get(itemPath)
		if err != nil {
			if errors.Is(err, store.ErrorNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}
		if err := readAncestors(tx, path); err != nil {
			return err
		}

		old := lineItemFromDoc(kind, id, doc.Data)
		item := &LineItem{
			ID:              id,
			Kind:            kind,
			Name:            input.Name,
			Unit:            input.Unit,
			Quantity:        input.Quantity,
			Cost:            input.Cost,
			Subtotal:        input.Quantity.Mul(input.Cost),
			HasSubMaterials: input.HasSubMaterials,
			CreatedAt:       old.CreatedAt,
			UpdatedAt:       time.Now().UTC(),
		}
		if item.HasSubMaterials {
			// Subtotal and cost stay derived from the children; editing
			// the parent never changes the rollup.
			item.Cost = old.Cost
			item.Subtotal = old.Subtotal
		}

		delta := item.Subtotal.Sub(old.Subtotal)
		applyDelta(tx, path, kind, delta)
		tx.Set(itemPath, item.doc())
		out = item
		return nil
	})
	if err != nil {
		config.LogError(logger, "lineItem.go", "UpdateLineItem", itemPath, input, err)
		return nil, utils.ClassifyStoreError(err)
	}
	return out, nil
}

// DeleteLineItem removes a line item, decrementing every ancestor sum
// by its subtotal in the same batch as the delete. Deleting an absent
// item is a no-op, which keeps retries safe.
func DeleteLineItem(ctx context.Context, path AggregatePath, kind LineItemKind, id string) error {
	logger := config.GetLogger()
	if err := path.Validate(); err != nil {
		return err
	}
	if !kind.Valid() {
		return fmt.Errorf("unknown line item kind %q", kind)
	}

	s := config.GetStore()
	itemPath := path.ItemPath(kind, id)
	doc, err := s.Get(ctx, itemPath)
	if err != nil {
		if errors.Is(err, store.ErrorNotFound) {
			return nil
		}
		config.LogError(logger, "lineItem.go", "DeleteLineItem", itemPath, nil, err)
		return utils.ClassifyStoreError(err)
	}

	subtotal := utils.DocDecimal(doc.Data, fieldSubtotal)
	batch := s.NewBatch()
	for _, anc := range path.Ancestors() {
		batch.Update(anc, []store.Update{store.IncrementField(kind.SumField(), subtotal.Neg())})
	}
	batch.Delete(itemPath)
	if err := batch.Commit(ctx); err != nil {
		config.LogError(logger, "lineItem.go", "DeleteLineItem", itemPath, nil, err)
		return utils.ClassifyStoreError(err)
	}
	return nil
}

func GetLineItem(ctx context.Context, path AggregatePath, kind LineItemKind, id string) (*LineItem, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}
	s := config.GetStore()
	doc, err := s.Get(ctx, path.ItemPath(kind, id))
	if err != nil {
		if errors.Is(err, store.ErrorNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, utils.ClassifyStoreError(err)
	}
	return lineItemFromDoc(kind, id, doc.Data), nil
}

func ListLineItems(ctx context.Context, path AggregatePath, kind LineItemKind) ([]*LineItem, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}
	s := config.GetStore()
	docs, err := s.Documents(ctx, path.Collection(kind))
	if err != nil {
		return nil, utils.ClassifyStoreError(err)
	}
	items := make([]*LineItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, lineItemFromDoc(kind, doc.ID, doc.Data))
	}
	return items, nil
}
