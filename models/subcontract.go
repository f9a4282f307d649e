package models

import "context"

func CreateSubcontract(ctx context.Context, path AggregatePath, input *NewLineItem) (*LineItem, error) {
	return CreateLineItem(ctx, path, KindSubcontract, input)
}

func UpdateSubcontract(ctx context.Context, path AggregatePath, id string, input *NewLineItem) (*LineItem, error) {
	return UpdateLineItem(ctx, path, KindSubcontract, id, input)
}

func DeleteSubcontract(ctx context.Context, path AggregatePath, id string) error {
	return DeleteLineItem(ctx, path, KindSubcontract, id)
}

func GetSubcontract(ctx context.Context, path AggregatePath, id string) (*LineItem, error) {
	return GetLineItem(ctx, path, KindSubcontract, id)
}

func ListSubcontracts(ctx context.Context, path AggregatePath) ([]*LineItem, error) {
	return ListLineItems(ctx, path, KindSubcontract)
}
