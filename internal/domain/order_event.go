package domain

import "time"

type OrderCreatedEvent struct {
	OrderID   string    `json:"orderId"`
	Number    string    `json:"number"`
	Type      OrderType `json:"type"`
	TableID   *string   `json:"tableId,omitempty"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

type OrderStatusChangedEvent struct {
	OrderID                 string      `json:"orderId"`
	Number                  string      `json:"number"`
	From                    OrderStatus `json:"from"`
	To                      OrderStatus `json:"to"`
	ActorRole               Role        `json:"actorRole"`
	EstimatedCompletionTime *time.Time  `json:"estimatedCompletionTime,omitempty"`
	ChangedAt               time.Time   `json:"changedAt"`
}
