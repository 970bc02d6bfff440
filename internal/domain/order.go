package domain

import (
	"math"
	"time"
)

type OrderStatus string

const (
	StatusPlaced     OrderStatus = "PLACED"
	StatusPreparing  OrderStatus = "PREPARING"
	StatusReady      OrderStatus = "READY"
	StatusDelivering OrderStatus = "DELIVERING"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

type OrderType string

const (
	TypeDineIn   OrderType = "DINE_IN"
	TypeTakeout  OrderType = "TAKEOUT"
	TypeDelivery OrderType = "DELIVERY"
)

func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPlaced, StatusPreparing, StatusReady, StatusDelivering, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (t OrderType) IsValid() bool {
	return t == TypeDineIn || t == TypeTakeout || t == TypeDelivery
}

type Order struct {
	ID                      string      `json:"id" gorm:"primaryKey;type:char(36)"`
	Number                  string      `json:"number" gorm:"uniqueIndex;size:32"`
	Type                    OrderType   `json:"type" gorm:"size:16;not null"`
	Status                  OrderStatus `json:"status" gorm:"size:16;not null;index"`
	Items                   []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	Subtotal                int64       `json:"subtotal" gorm:"not null"`
	Tax                     int64       `json:"tax" gorm:"not null"`
	Tip                     int64       `json:"tip" gorm:"not null"`
	Total                   int64       `json:"total" gorm:"not null"`
	TableID                 *string     `json:"tableId,omitempty" gorm:"type:char(36);index"`
	CreatedBy               string      `json:"createdBy" gorm:"type:char(36);not null"`
	EstimatedCompletionTime *time.Time  `json:"estimatedCompletionTime,omitempty"`
	CreatedAt               time.Time   `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt               time.Time   `json:"updatedAt" gorm:"autoUpdateTime"`
}

type OrderItem struct {
	ID             uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID        string `json:"orderId" gorm:"type:char(36);not null;index"`
	MenuItemID     string `json:"menuItemId" gorm:"type:char(36);not null"`
	Name           string `json:"name" gorm:"size:128;not null"`
	Quantity       int    `json:"quantity" gorm:"not null"`
	UnitPrice      int64  `json:"unitPrice" gorm:"not null"`
	Customizations string `json:"customizations,omitempty" gorm:"type:text"`
}

// RecomputeTotals derives subtotal, tax and total from the line items. The
// monetary fields are never written any other way.
func (o *Order) RecomputeTotals(taxRate float64) {
	var subtotal int64
	for _, it := range o.Items {
		subtotal += int64(it.Quantity) * it.UnitPrice
	}
	o.Subtotal = subtotal
	o.Tax = int64(math.Round(float64(subtotal) * taxRate))
	o.Total = o.Subtotal + o.Tax + o.Tip
}

type transition struct {
	From OrderStatus
	To   OrderStatus
}

// transitions is the single source of truth for the order state machine.
// The value lists the roles allowed to trigger the move; admins and managers
// may trigger any of them.
var transitions = map[transition][]Role{
	{StatusPlaced, StatusPreparing}:     {RoleKitchen, RoleServer},
	{StatusPlaced, StatusCancelled}:     {RoleServer},
	{StatusPreparing, StatusReady}:      {RoleKitchen},
	{StatusReady, StatusDelivering}:     {RoleServer},
	{StatusReady, StatusCompleted}:      {RoleServer},
	{StatusDelivering, StatusCompleted}: {RoleServer},
}

// CanTransition reports whether the move from -> to is legal for an order of
// the given type. READY -> DELIVERING exists only for delivery orders, and a
// delivery order cannot skip DELIVERING on the way out of READY.
func CanTransition(orderType OrderType, from, to OrderStatus) bool {
	if _, ok := transitions[transition{from, to}]; !ok {
		return false
	}
	if from == StatusReady {
		if to == StatusDelivering && orderType != TypeDelivery {
			return false
		}
		if to == StatusCompleted && orderType == TypeDelivery {
			return false
		}
	}
	if from == StatusDelivering && orderType != TypeDelivery {
		return false
	}
	return true
}

// TransitionRoles returns the roles allowed to trigger the move, nil when the
// move itself is illegal.
func TransitionRoles(from, to OrderStatus) []Role {
	return transitions[transition{from, to}]
}
