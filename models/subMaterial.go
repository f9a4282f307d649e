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

// SubMaterial is a child line of a material flagged hasSubMaterials.
// The parent's subtotal is the rollup Σ(quantity*cost) over children;
// the parent's own cost field is rollup/parentQuantity and exists only
// for unit-cost display.
type SubMaterial struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	Cost      decimal.Decimal `json:"cost"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type NewSubMaterial struct {
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	Quantity decimal.Decimal `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
}

func subMaterialFromDoc(id string, data map[string]any) *SubMaterial {
	return &SubMaterial{
		ID:        id,
		Name:      utils.DocString(data, fieldName),
		Unit:      utils.DocString(data, fieldUnit),
		Quantity:  utils.DocDecimal(data, fieldQuantity),
		Cost:      utils.DocDecimal(data, fieldCost),
		CreatedAt: utils.DocTime(data, fieldCreatedAt),
		UpdatedAt: utils.DocTime(data, fieldUpdatedAt),
	}
}

func (sm *SubMaterial) doc() map[string]any {
	return map[string]any{
		fieldName:      sm.Name,
		fieldUnit:      sm.Unit,
		fieldQuantity:  sm.Quantity,
		fieldCost:      sm.Cost,
		fieldCreatedAt: sm.CreatedAt,
		fieldUpdatedAt: sm.UpdatedAt,
	}
}

func (sm *SubMaterial) extended() decimal.Decimal {
	return sm.Quantity.Mul(sm.Cost)
}

// mutateSubMaterial runs one sub-material write as a two-hop
// propagation: the child write, the parent material's recomputed
// rollup, and the ancestor-sum delta all commit in one transaction.
// A nil child deletes the target, otherwise child is written. The
// rollup is recomputed from the transaction's snapshot of the siblings
// with the target child applied.
func mutateSubMaterial(ctx context.Context, path AggregatePath, materialID, subID string, child *SubMaterial) error {
	s := config.GetStore()
	matPath := path.ItemPath(KindMaterial, materialID)
	subPath := path.SubMaterialCollection(materialID) + "/" + subID

	return s.RunTransaction(ctx, func(tx store.Tx) error {
		matDoc, err := tx.Get(matPath)
		if err != nil {
			if errors.Is(err, store.ErrorNotFound) {
				return fmt.Errorf("%w: %s", utils.ErrorAggregateMissing, matPath)
			}
			return err
		}
		if err := readAncestors(tx, path); err != nil {
			return err
		}
		siblings, err := tx.Documents(path.SubMaterialCollection(materialID))
		if err != nil {
			return err
		}

		rollup := decimal.Zero
		for _, sib := range siblings {
			if sib.ID == subID {
				continue
			}
			rollup = rollup.Add(subMaterialFromDoc(sib.ID, sib.Data).extended())
		}
		if child != nil {
			rollup = rollup.Add(child.extended())
		}

		oldSubtotal := utils.DocDecimal(matDoc.Data, fieldSubtotal)
		delta := rollup.Sub(oldSubtotal)

		// Parent quantity divides the rollup for unit-cost display; it
		// never multiplies into the propagated value.
		parentQty := utils.DocDecimal(matDoc.Data, fieldQuantity)
		unitCost := decimal.Zero
		if parentQty.IsPositive() {
			unitCost = rollup.Div(parentQty)
		}

		applyDelta(tx, path, KindMaterial, delta)
		tx.Update(matPath, []store.Update{
			{Field: fieldSubtotal, Value: rollup},
			{Field: fieldCost, Value: unitCost},
		})
		if child != nil {
			tx.Set(subPath, child.doc())
		} else {
			tx.Delete(subPath)
		}
		return nil
	})
}

func CreateSubMaterial(ctx context.Context, path AggregatePath, materialID string, input *NewSubMaterial) (*SubMaterial, error) {
	logger := config.GetLogger()
	if err := path.Validate(); err != nil {
		return nil, err
	}
	s := config.GetStore()
	now := time.Now().UTC()
	child := &SubMaterial{
		ID:        s.NewDocID(path.SubMaterialCollection(materialID)),
		Name:      input.Name,
		Unit:      input.Unit,
		Quantity:  input.Quantity,
		Cost:      input.Cost,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := mutateSubMaterial(ctx, path, materialID, child.ID, child); err != nil {
		config.LogError(logger, "subMaterial.go", "CreateSubMaterial", materialID, input, err)
		return nil, utils.ClassifyStoreError(err)
	}
	return child, nil
}

func UpdateSubMaterial(ctx context.Context, path AggregatePath, materialID, subID string, input *NewSubMaterial) (*SubMaterial, error) {
	logger := config.GetLogger()
	if err := path.Validate(); err != nil {
		return nil, err
	}
	existing, err := GetSubMaterial(ctx, path, materialID, subID)
	if err != nil {
		return nil, err
	}
	child := &SubMaterial{
		ID:        subID,
		Name:      input.Name,
		Unit:      input.Unit,
		Quantity:  input.Quantity,
		Cost:      input.Cost,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}
	if err := mutateSubMaterial(ctx, path, materialID, subID, child); err != nil {
		config.LogError(logger, "subMaterial.go", "UpdateSubMaterial", subID, input, err)
		return nil, utils.ClassifyStoreError(err)
	}
	return child, nil
}

func DeleteSubMaterial(ctx context.Context, path AggregatePath, materialID, subID string) error {
	logger := config.GetLogger()
	if err := path.Validate(); err != nil {
		return err
	}
	_, err := GetSubMaterial(ctx, path, materialID, subID)
	if errors.Is(err, utils.ErrorRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := mutateSubMaterial(ctx, path, materialID, subID, nil); err != nil {
		config.LogError(logger, "subMaterial.go", "DeleteSubMaterial", subID, nil, err)
		return utils.ClassifyStoreError(err)
	}
	return nil
}

func GetSubMaterial(ctx context.Context, path AggregatePath, materialID, subID string) (*SubMaterial, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}
	s := config.GetStore()
	doc, err := s.Get(ctx, path.SubMaterialCollection(materialID)+"/"+subID)
	if err != nil {
		if errors.Is(err, store.ErrorNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, utils.ClassifyStoreError(err)
	}
	return subMaterialFromDoc(subID, doc.Data), nil
}

func ListSubMaterials(ctx context.Context, path AggregatePath, materialID string) ([]*SubMaterial, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}
	s := config.GetStore()
	docs, err := s.Documents(ctx, path.SubMaterialCollection(materialID))
	if err != nil {
		return nil, utils.ClassifyStoreError(err)
	}
	out := make([]*SubMaterial, 0, len(docs))
	for _, doc := range docs {
		out = append(out, subMaterialFromDoc(doc.ID, doc.Data))
	}
	return out, nil
}
