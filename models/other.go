package models

import "context"

func CreateOther(ctx context.Context, path AggregatePath, input *NewLineItem) (*LineItem, error) {
	return CreateLineItem(ctx, path, KindOther, input)
}

func UpdateOther(ctx context.Context, path AggregatePath, id string, input *NewLineItem) (*LineItem, error) {
	return UpdateLineItem(ctx, path, KindOther, id, input)
}

func DeleteOther(ctx context.Context, path AggregatePath, id string) error {
	return DeleteLineItem(ctx, path, KindOther, id)
}

func GetOther(ctx context.Context, path AggregatePath, id string) (*LineItem, error) {
	return GetLineItem(ctx, path, KindOther, id)
}

func ListOthers(ctx context.Context, path AggregatePath) ([]*LineItem, error) {
	return ListLineItems(ctx, path, KindOther)
}
