package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pos-service/internal/domain"
	"pos-service/internal/infra"
	rabbit "pos-service/internal/infra/rabbitmq"
	"pos-service/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// OrderConfig carries the lifecycle tunables read from the environment.
type OrderConfig struct {
	TaxRate     float64
	PrepBase    time.Duration
	PrepPerItem time.Duration
}

type OrderService struct {
	orders      repository.OrderRepository
	menu        infra.MenuClientInterface
	publisher   rabbit.PublisherInterface
	redisClient *redis.Client
	cfg         OrderConfig
	now         func() time.Time
}

func NewOrderService(r repository.OrderRepository, m infra.MenuClientInterface, pub rabbit.PublisherInterface, cfg OrderConfig) *OrderService {
	return &OrderService{
		orders:    r,
		menu:      m,
		publisher: pub,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *OrderService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

type OrderItemInput struct {
	MenuItemID     string
	Quantity       int
	Customizations []string
}

type CreateOrderInput struct {
	Type           domain.OrderType
	TableID        *string
	ReservationTag *string
	Tip            int64
	Items          []OrderItemInput
}

func (s *OrderService) CreateOrder(ctx context.Context, actor domain.Actor, in CreateOrderInput) (*domain.Order, error) {
	if actor.Role == domain.RoleKitchen {
		return nil, domain.ErrUnauthorized
	}
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	items, err := s.snapshotItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:        uuid.NewString(),
		Number:    s.newOrderNumber(),
		Type:      in.Type,
		Status:    domain.StatusPlaced,
		Items:     items,
		Tip:       in.Tip,
		TableID:   in.TableID,
		CreatedBy: actor.ID,
		CreatedAt: s.now(),
	}
	order.RecomputeTotals(s.cfg.TaxRate)

	if err := s.orders.Create(ctx, order, in.ReservationTag); err != nil {
		return nil, err
	}

	s.invalidateBoard(domain.StatusPlaced)
	evt := domain.OrderCreatedEvent{
		OrderID:   order.ID,
		Number:    order.Number,
		Type:      order.Type,
		TableID:   order.TableID,
		Total:     order.Total,
		CreatedAt: order.CreatedAt,
	}
	go s.publish(context.Background(), "order.created", evt, order.Number)

	return order, nil
}

func validateCreate(in CreateOrderInput) error {
	if !in.Type.IsValid() {
		return &domain.ValidationError{Field: "type", Reason: "unknown order type"}
	}
	if in.Type == domain.TypeDineIn && in.TableID == nil {
		return &domain.ValidationError{Field: "tableId", Reason: "dine-in orders require a table"}
	}
	if in.Type != domain.TypeDineIn && in.TableID != nil {
		return &domain.ValidationError{Field: "tableId", Reason: "only dine-in orders reference a table"}
	}
	if len(in.Items) == 0 {
		return &domain.ValidationError{Field: "items", Reason: "order must have at least one line item"}
	}
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return &domain.ValidationError{Field: "items", Reason: "quantity must be at least 1"}
		}
		if it.MenuItemID == "" {
			return &domain.ValidationError{Field: "items", Reason: "menu item id required"}
		}
	}
	if in.Tip < 0 {
		return &domain.ValidationError{Field: "tip", Reason: "tip cannot be negative"}
	}
	return nil
}

// snapshotItems resolves each line against the menu service and freezes the
// price onto the order, so later menu edits never touch existing orders.
func (s *OrderService) snapshotItems(ctx context.Context, in []OrderItemInput) ([]domain.OrderItem, error) {
	items := make([]domain.OrderItem, 0, len(in))
	for _, it := range in {
		info, err := s.getMenuItemWithCache(ctx, it.MenuItemID)
		if err != nil {
			return nil, err
		}
		if info == nil {
			return nil, &domain.ValidationError{Field: "items", Reason: "unknown menu item " + it.MenuItemID}
		}
		items = append(items, domain.OrderItem{
			MenuItemID:     info.ID,
			Name:           info.Name,
			Quantity:       it.Quantity,
			UnitPrice:      info.Price,
			Customizations: strings.Join(it.Customizations, ", "),
		})
	}
	return items, nil
}

func (s *OrderService) getMenuItemWithCache(ctx context.Context, id string) (*infra.MenuItemInfo, error) {
	cacheKey := "menu:item:" + id

	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var info infra.MenuItemInfo
			if err := json.Unmarshal([]byte(cached), &info); err == nil {
				return &info, nil
			}
		}
	}

	info, err := s.menu.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.redisClient != nil && info != nil {
		if data, err := json.Marshal(info); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, 5*time.Minute)
		}
	}

	return info, nil
}

// WarmupMenuCache pre-fills the redis menu snapshot cache for the given item
// ids. Misses and lookup failures are logged and skipped.
func (s *OrderService) WarmupMenuCache(ctx context.Context, ids []string) {
	for _, id := range ids {
		if _, err := s.getMenuItemWithCache(ctx, id); err != nil {
			logrus.WithError(err).WithField("item", id).Warn("menu cache warmup failed")
		}
	}
}

// Transition applies the state machine. The commit is compare-and-set on the
// status the actor observed, so of two racing conflicting requests exactly
// one lands and the other gets the stored status back in the error.
func (s *OrderService) Transition(ctx context.Context, actor domain.Actor, orderID string, from, to domain.OrderStatus) (*domain.Order, error) {
	if !from.IsValid() || !to.IsValid() {
		return nil, &domain.ValidationError{Field: "status", Reason: "unknown status"}
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	if !domain.CanTransition(order.Type, from, to) {
		return nil, &domain.InvalidTransitionError{From: from, To: to}
	}
	if !actor.Elevated() && !roleAllowed(actor.Role, domain.TransitionRoles(from, to)) {
		return nil, domain.ErrUnauthorized
	}

	if to == domain.StatusPreparing {
		est := s.now().Add(s.cfg.PrepBase + time.Duration(countItems(order.Items))*s.cfg.PrepPerItem)
		order.EstimatedCompletionTime = &est
	}
	order.Status = to

	if err := s.orders.CommitTransition(ctx, order, from); err != nil {
		return nil, err
	}

	s.invalidateBoard(from)
	s.invalidateBoard(to)
	evt := domain.OrderStatusChangedEvent{
		OrderID:                 order.ID,
		Number:                  order.Number,
		From:                    from,
		To:                      order.Status,
		ActorRole:               actor.Role,
		EstimatedCompletionTime: order.EstimatedCompletionTime,
		ChangedAt:               s.now().UTC(),
	}
	go s.publish(context.Background(), "order.status_changed", evt, order.Number)

	return order, nil
}

func roleAllowed(role domain.Role, allowed []domain.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

func countItems(items []domain.OrderItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// UpdateItems replaces the line items. Only PLACED orders are editable.
func (s *OrderService) UpdateItems(ctx context.Context, actor domain.Actor, orderID string, in []OrderItemInput) (*domain.Order, error) {
	if actor.Role == domain.RoleKitchen {
		return nil, domain.ErrUnauthorized
	}
	if len(in) == 0 {
		return nil, &domain.ValidationError{Field: "items", Reason: "order must have at least one line item"}
	}
	for _, it := range in {
		if it.Quantity < 1 {
			return nil, &domain.ValidationError{Field: "items", Reason: "quantity must be at least 1"}
		}
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if order.Status != domain.StatusPlaced {
		return nil, &domain.ValidationError{Field: "items", Reason: "line items are only editable while PLACED"}
	}

	items, err := s.snapshotItems(ctx, in)
	if err != nil {
		return nil, err
	}
	order.Items = items
	order.RecomputeTotals(s.cfg.TaxRate)

	if err := s.orders.ReplaceItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func (s *OrderService) ListOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	if !status.IsValid() {
		return nil, &domain.ValidationError{Field: "status", Reason: "unknown status"}
	}
	return s.orders.ListByStatus(ctx, status)
}

func (s *OrderService) ListOrdersByTable(ctx context.Context, tableID string) ([]domain.Order, error) {
	return s.orders.ListByTable(ctx, tableID)
}

func (s *OrderService) newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", s.now().Format("20060102"), suffix)
}

// invalidateBoard drops the cached kitchen board list for a status bucket.
func (s *OrderService) invalidateBoard(status domain.OrderStatus) {
	if s.redisClient == nil {
		return
	}
	s.redisClient.Del(context.Background(), "board:"+string(status))
}

// publish is best-effort: display feeds tolerate a missed event, the request
// does not fail on broker trouble.
func (s *OrderService) publish(ctx context.Context, routingKey string, evt any, orderNumber string) {
	if err := s.publisher.Publish(ctx, routingKey, evt); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"event": routingKey,
			"order": orderNumber,
		}).Error("failed to publish event")
	}
}
