package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pos-service/internal/domain"
	"pos-service/internal/infra"
	"pos-service/internal/policy"
	"pos-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

type Handler struct {
	orders   *services.OrderService
	tables   *services.TableService
	payments *services.PaymentService
	auth     *services.AuthService
	menu     infra.MenuClientInterface
	rdb      *redis.Client
}

func NewHandler(orders *services.OrderService, tables *services.TableService, payments *services.PaymentService, auth *services.AuthService, menu infra.MenuClientInterface, rdb *redis.Client) *Handler {
	return &Handler{
		orders:   orders,
		tables:   tables,
		payments: payments,
		auth:     auth,
		menu:     menu,
		rdb:      rdb,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Use(h.authenticate)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"alive": true})
	})

	auth := r.Group("/auth", requireArea(policy.AreaPublic))
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)

	pub := r.Group("/menu", requireArea(policy.AreaPublic))
	pub.GET("/categories/:id/items", h.MenuByCategory)

	customer := r.Group("/api/customer", requireArea(policy.AreaCustomer), requireActor)
	customer.POST("/orders", h.CreateOrder)
	customer.GET("/orders/:id", h.GetOrder)
	customer.POST("/orders/:id/checkout", h.Checkout)

	server := r.Group("/api/server", requireArea(policy.AreaServer))
	server.POST("/orders", h.CreateOrder)
	server.GET("/orders/:id", h.GetOrder)
	server.PUT("/orders/:id/items", h.UpdateItems)
	server.POST("/orders/:id/transition", h.Transition)
	server.POST("/orders/:id/checkout", h.Checkout)
	server.GET("/tables", h.ListTables)
	server.GET("/tables/:id/orders", h.OrdersByTable)
	server.PUT("/tables/:id/status", h.SetTableStatus)

	kitchen := r.Group("/api/kitchen", requireArea(policy.AreaKitchen))
	kitchen.GET("/board/:status", h.KitchenBoard)
	kitchen.POST("/orders/:id/transition", h.Transition)

	admin := r.Group("/api/admin", requireArea(policy.AreaAdmin))
	admin.POST("/tables", h.CreateTable)
	admin.GET("/tables", h.ListTables)
	admin.POST("/tables/:id/disable", h.DisableTable)
	admin.GET("/users", h.ListUsers)
	admin.POST("/users", h.Register)
	admin.PUT("/users/:id/role", h.ChangeRole)
	admin.POST("/users/:id/deactivate", h.DeactivateUser)
	admin.GET("/orders", h.OrdersByStatus)
	admin.GET("/orders/:id/payments", h.PaymentsByOrder)
	admin.POST("/payments/:id/refund", h.Refund)
	admin.GET("/reports/summary", h.ReportSummary)
}

func writeError(c *gin.Context, err error) {
	var it *domain.InvalidTransitionError
	var tu *domain.TableUnavailableError
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &it):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid_transition", "from": it.From, "to": it.To, "message": it.Error()})
	case errors.As(err, &tu):
		c.JSON(http.StatusConflict, gin.H{"error": "table_unavailable", "tableId": tu.TableID, "status": tu.Status, "message": tu.Error()})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "field": ve.Field, "message": ve.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized"})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email_taken"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.auth.Register(c.Request.Context(), actorFrom(c), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user, "home": policy.HomePath(user.Role)})
}

func (h *Handler) MenuByCategory(c *gin.Context) {
	items, err := h.menu.ListByCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items := make([]services.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, services.OrderItemInput{
			MenuItemID:     it.MenuItemID,
			Quantity:       it.Quantity,
			Customizations: it.Customizations,
		})
	}
	order, err := h.orders.CreateOrder(c.Request.Context(), *actorFrom(c), services.CreateOrderInput{
		Type:           domain.OrderType(req.Type),
		TableID:        req.TableID,
		ReservationTag: req.ReservationTag,
		Tip:            req.Tip,
		Items:          items,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrderByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	actor := actorFrom(c)
	if actor.Role == domain.RoleCustomer && order.CreatedBy != actor.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) UpdateItems(c *gin.Context) {
	var req UpdateItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items := make([]services.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, services.OrderItemInput{
			MenuItemID:     it.MenuItemID,
			Quantity:       it.Quantity,
			Customizations: it.Customizations,
		})
	}
	order, err := h.orders.UpdateItems(c.Request.Context(), *actorFrom(c), c.Param("id"), items)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) Transition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.orders.Transition(c.Request.Context(), *actorFrom(c), c.Param("id"),
		domain.OrderStatus(req.From), domain.OrderStatus(req.To))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) OrdersByStatus(c *gin.Context) {
	status := domain.OrderStatus(c.Query("status"))
	orders, err := h.orders.ListOrdersByStatus(c.Request.Context(), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// KitchenBoard serves the display board for one status bucket with a short
// redis cache in front; mutations invalidate the bucket.
func (h *Handler) KitchenBoard(c *gin.Context) {
	status := domain.OrderStatus(c.Param("status"))
	ctx := c.Request.Context()
	cacheKey := "board:" + string(status)

	if h.rdb != nil {
		if b, err := h.rdb.Get(ctx, cacheKey).Result(); err == nil {
			c.Data(http.StatusOK, "application/json", []byte(b))
			return
		}
	}

	orders, err := h.orders.ListOrdersByStatus(ctx, status)
	if err != nil {
		writeError(c, err)
		return
	}
	if h.rdb != nil {
		if data, err := json.Marshal(orders); err == nil {
			h.rdb.Set(context.Background(), cacheKey, data, 10*time.Second)
		}
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) CreateTable(c *gin.Context) {
	var req CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	table, err := h.tables.CreateTable(c.Request.Context(), *actorFrom(c), services.CreateTableInput{
		Number:   req.Number,
		Capacity: req.Capacity,
		Location: req.Location,
		QRCode:   req.QRCode,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

func (h *Handler) ListTables(c *gin.Context) {
	var status *domain.TableStatus
	if s := c.Query("status"); s != "" {
		st := domain.TableStatus(s)
		status = &st
	}
	tables, err := h.tables.ListTables(c.Request.Context(), status, c.Query("location"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

func (h *Handler) SetTableStatus(c *gin.Context) {
	var req SetTableStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	table, err := h.tables.SetStatus(c.Request.Context(), *actorFrom(c), c.Param("id"),
		domain.TableStatus(req.Status), req.ReservationTag)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (h *Handler) DisableTable(c *gin.Context) {
	if err := h.tables.DisableTable(c.Request.Context(), *actorFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) OrdersByTable(c *gin.Context) {
	orders, err := h.orders.ListOrdersByTable(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payment, err := h.payments.Checkout(c.Request.Context(), *actorFrom(c), c.Param("id"),
		domain.PaymentMethod(req.Method), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (h *Handler) Refund(c *gin.Context) {
	payment, err := h.payments.Refund(c.Request.Context(), *actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (h *Handler) ReportSummary(c *gin.Context) {
	report, err := h.payments.DailySummary(c.Request.Context(), *actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) PaymentsByOrder(c *gin.Context) {
	payments, err := h.payments.ListPaymentsByOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context(), *actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) ChangeRole(c *gin.Context) {
	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.auth.ChangeRole(c.Request.Context(), *actorFrom(c), c.Param("id"), domain.Role(req.Role)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeactivateUser(c *gin.Context) {
	if err := h.auth.Deactivate(c.Request.Context(), *actorFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
