package services

import (
	"context"
	"time"

	"pos-service/internal/domain"
	"pos-service/internal/infra"
	"pos-service/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type PaymentService struct {
	payments  repository.PaymentRepository
	orders    repository.OrderRepository
	processor infra.ProcessorClientInterface
	now       func() time.Time
}

func NewPaymentService(p repository.PaymentRepository, o repository.OrderRepository, proc infra.ProcessorClientInterface) *PaymentService {
	return &PaymentService{payments: p, orders: o, processor: proc, now: time.Now}
}

// SummaryReport is the admin dashboard rollup: revenue booked since the
// start of the business day plus live order counts per status.
type SummaryReport struct {
	Since          time.Time                    `json:"since"`
	Revenue        int64                        `json:"revenue"`
	OrdersByStatus map[domain.OrderStatus]int64 `json:"ordersByStatus"`
}

// Checkout charges the processor and records the outcome. Completed amounts
// on an order never sum past its total: obvious overpayment is rejected
// before the processor is ever called, and the completed row is inserted
// through SaveGuarded, which re-checks the sum under the order row lock so
// racing checkouts cannot both land.
func (s *PaymentService) Checkout(ctx context.Context, actor domain.Actor, orderID string, method domain.PaymentMethod, amount int64) (*domain.Payment, error) {
	if !method.IsValid() {
		return nil, &domain.ValidationError{Field: "method", Reason: "unknown payment method"}
	}
	if amount <= 0 {
		return nil, &domain.ValidationError{Field: "amount", Reason: "amount must be positive"}
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if order.Status == domain.StatusCancelled {
		return nil, &domain.ValidationError{Field: "order", Reason: "cancelled orders cannot be paid"}
	}

	paid, err := s.payments.SumCompleted(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if paid+amount > order.Total {
		return nil, &domain.ValidationError{Field: "amount", Reason: "payment would exceed order total"}
	}

	result, err := s.processor.Charge(ctx, amount, string(method))
	if err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		Amount:      amount,
		Method:      method,
		ProcessedBy: actor.ID,
	}
	if result.Approved {
		payment.Status = domain.PaymentCompleted
		if result.TransactionID != "" {
			payment.TransactionID = &result.TransactionID
		}
		if err := s.payments.SaveGuarded(ctx, payment, order.Total); err != nil {
			logrus.WithFields(logrus.Fields{
				"order":       order.Number,
				"transaction": result.TransactionID,
			}).Warn("approved charge rejected at record time, needs void")
			return nil, err
		}
		return payment, nil
	}

	payment.Status = domain.PaymentFailed
	logrus.WithFields(logrus.Fields{
		"order":  order.Number,
		"reason": result.Reason,
	}).Warn("payment declined")
	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Refund records a separate REFUNDED row for a completed payment. The
// original row is never mutated.
func (s *PaymentService) Refund(ctx context.Context, actor domain.Actor, paymentID string) (*domain.Payment, error) {
	if !actor.Elevated() {
		return nil, domain.ErrUnauthorized
	}

	original, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, domain.ErrNotFound
	}
	if original.Status != domain.PaymentCompleted {
		return nil, &domain.ValidationError{Field: "payment", Reason: "only completed payments can be refunded"}
	}

	refund := &domain.Payment{
		ID:            uuid.NewString(),
		OrderID:       original.OrderID,
		Amount:        original.Amount,
		Method:        original.Method,
		Status:        domain.PaymentRefunded,
		TransactionID: original.TransactionID,
		ProcessedBy:   actor.ID,
	}
	if err := s.payments.Save(ctx, refund); err != nil {
		return nil, err
	}
	return refund, nil
}

func (s *PaymentService) ListPaymentsByOrder(ctx context.Context, orderID string) ([]domain.Payment, error) {
	return s.payments.ListByOrder(ctx, orderID)
}

// DailySummary rolls up completed revenue since local midnight and the
// current order counts per status.
func (s *PaymentService) DailySummary(ctx context.Context, actor domain.Actor) (*SummaryReport, error) {
	if !actor.Elevated() {
		return nil, domain.ErrUnauthorized
	}

	now := s.now()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	revenue, err := s.payments.RevenueSince(ctx, since)
	if err != nil {
		return nil, err
	}
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &SummaryReport{Since: since, Revenue: revenue, OrdersByStatus: counts}, nil
}
