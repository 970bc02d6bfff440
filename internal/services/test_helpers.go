package services

import (
	"time"

	"pos-service/internal/domain"
	"pos-service/internal/infra"
)

const (
	TestTaxRate     = 0.0825
	TestPrepBase    = 10 * time.Minute
	TestPrepPerItem = 2 * time.Minute
)

func testOrderConfig() OrderConfig {
	return OrderConfig{
		TaxRate:     TestTaxRate,
		PrepBase:    TestPrepBase,
		PrepPerItem: TestPrepPerItem,
	}
}

func mockMenuItem(id, name string, price int64) *infra.MenuItemInfo {
	return &infra.MenuItemInfo{
		ID:    id,
		Name:  name,
		Price: price,
	}
}

func mockOrder(id string, typ domain.OrderType, status domain.OrderStatus, tableID *string) *domain.Order {
	o := &domain.Order{
		ID:        id,
		Number:    "ORD-20250101-TEST01",
		Type:      typ,
		Status:    status,
		TableID:   tableID,
		CreatedBy: "server-1",
		Items: []domain.OrderItem{
			{MenuItemID: "m-1", Name: "Classic Margherita", Quantity: 2, UnitPrice: 1199},
		},
		CreatedAt: time.Now(),
	}
	o.RecomputeTotals(TestTaxRate)
	return o
}

func strPtr(s string) *string {
	return &s
}
