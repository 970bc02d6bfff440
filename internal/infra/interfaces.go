package infra

import "context"

type MenuClientInterface interface {
	GetItem(ctx context.Context, id string) (*MenuItemInfo, error)
	ListByCategory(ctx context.Context, categoryID string) ([]MenuItemInfo, error)
}

var _ MenuClientInterface = (*MenuClient)(nil)

type ProcessorClientInterface interface {
	Charge(ctx context.Context, amount int64, method string) (*ChargeResult, error)
}

var _ ProcessorClientInterface = (*ProcessorClient)(nil)
