package repository

import (
	"context"
	"time"

	"pos-service/internal/domain"
)

type PaymentRepository interface {
	Save(ctx context.Context, p *domain.Payment) error

	// SaveGuarded inserts a COMPLETED payment inside a transaction that
	// locks the order row and re-sums its completed payments, so two
	// concurrent checkouts cannot both slip past the overpayment check. It
	// fails with *domain.ValidationError when the insert would push the
	// completed sum past orderTotal.
	SaveGuarded(ctx context.Context, p *domain.Payment, orderTotal int64) error
	FindByID(ctx context.Context, id string) (*domain.Payment, error)
	ListByOrder(ctx context.Context, orderID string) ([]domain.Payment, error)

	// SumCompleted returns the total of COMPLETED payment amounts for the
	// order.
	SumCompleted(ctx context.Context, orderID string) (int64, error)

	// RevenueSince returns the total of COMPLETED payment amounts recorded
	// at or after since.
	RevenueSince(ctx context.Context, since time.Time) (int64, error)
}
