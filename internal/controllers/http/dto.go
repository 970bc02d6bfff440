package http

type OrderItemRequest struct {
	MenuItemID     string   `json:"menuItemId" binding:"required"`
	Quantity       int      `json:"quantity" binding:"required,min=1"`
	Customizations []string `json:"customizations"`
}

type CreateOrderRequest struct {
	Type           string             `json:"type" binding:"required"`
	TableID        *string            `json:"tableId"`
	ReservationTag *string            `json:"reservationTag"`
	Tip            int64              `json:"tip" binding:"min=0"`
	Items          []OrderItemRequest `json:"items" binding:"required,dive"`
}

type UpdateItemsRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required,dive"`
}

type TransitionRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

type CreateTableRequest struct {
	Number   int     `json:"number" binding:"required,min=1"`
	Capacity int     `json:"capacity" binding:"required,min=1"`
	Location string  `json:"location"`
	QRCode   *string `json:"qrCode"`
}

type SetTableStatusRequest struct {
	Status         string  `json:"status" binding:"required"`
	ReservationTag *string `json:"reservationTag"`
}

type CheckoutRequest struct {
	Method string `json:"method" binding:"required"`
	Amount int64  `json:"amount" binding:"required,min=1"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}
