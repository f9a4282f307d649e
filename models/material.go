package models

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/budgets_backend/config"
	"bitbucket.org/mmdatafocus/budgets_backend/store"
	"bitbucket.org/mmdatafocus/budgets_backend/utils"
)

func CreateMaterial(ctx context.Context, path AggregatePath, input *NewLineItem) (*LineItem, error) {
	return CreateLineItem(ctx, path, KindMaterial, input)
}

func UpdateMaterial(ctx context.Context, path AggregatePath, id string, input *NewLineItem) (*LineItem, error) {
	return UpdateLineItem(ctx, path, KindMaterial, id, input)
}

func GetMaterial(ctx context.Context, path AggregatePath, id string) (*LineItem, error) {
	return GetLineItem(ctx, path, KindMaterial, id)
}

func ListMaterials(ctx context.Context, path AggregatePath) ([]*LineItem, error) {
	return ListLineItems(ctx, path, KindMaterial)
}

// DeleteMaterial removes a material and its subMaterials children.
// The children are drained first through a bounded batch writer; the
// ancestor decrement and the material's own delete then commit together
// as one final batch, so the sums stay consistent with the material's
// existence. Re-running after a partial failure converges.
func DeleteMaterial(ctx context.Context, path AggregatePath, id string) error {
	logger := config.GetLogger()
	if err := path.Validate(); err != nil {
		return err
	}

	s := config.GetStore()
	itemPath := path.ItemPath(KindMaterial, id)
	doc, err := s.Get(ctx, itemPath)
	if err != nil {
		if errors.Is(err, store.ErrorNotFound) {
			return nil
		}
		config.LogError(logger, "material.go", "DeleteMaterial", itemPath, nil, err)
		return utils.ClassifyStoreError(err)
	}

	children, err := s.Documents(ctx, path.SubMaterialCollection(id))
	if err != nil {
		config.LogError(logger, "material.go", "DeleteMaterial", itemPath, nil, err)
		return utils.ClassifyStoreError(err)
	}
	if len(children) > 0 {
		w := store.NewBatchWriter(s)
		for _, child := range children {
			if err := w.Delete(ctx, child.Path); err != nil {
				config.LogError(logger, "material.go", "DeleteMaterial", child.Path, nil, err)
				return utils.ClassifyStoreError(err)
			}
		}
		if err := w.Flush(ctx); err != nil {
			config.LogError(logger, "material.go", "DeleteMaterial", itemPath, nil, err)
			return utils.ClassifyStoreError(err)
		}
	}

	subtotal := utils.DocDecimal(doc.Data, fieldSubtotal)
	batch := s.NewBatch()
	for _, anc := range path.Ancestors() {
		batch.Update(anc, []store.Update{store.IncrementField(FieldSumMaterials, subtotal.Neg())})
	}
	batch.Delete(itemPath)
	if err := batch.Commit(ctx); err != nil {
		config.LogError(logger, "material.go", "DeleteMaterial", itemPath, nil, err)
		return utils.ClassifyStoreError(err)
	}
	return nil
}
