package models

import "context"

func CreateLabor(ctx context.Context, path AggregatePath, input *NewLineItem) (*LineItem, error) {
	return CreateLineItem(ctx, path, KindLabor, input)
}

func UpdateLabor(ctx context.Context, path AggregatePath, id string, input *NewLineItem) (*LineItem, error) {
	return UpdateLineItem(ctx, path, KindLabor, id, input)
}

func DeleteLabor(ctx context.Context, path AggregatePath, id string) error {
	return DeleteLineItem(ctx, path, KindLabor, id)
}

func GetLabor(ctx context.Context, path AggregatePath, id string) (*LineItem, error) {
	return GetLineItem(ctx, path, KindLabor, id)
}

func ListLabors(ctx context.Context, path AggregatePath) ([]*LineItem, error) {
	return ListLineItems(ctx, path, KindLabor)
}
