package mysql

import (
	"context"
	"errors"
	"time"

	"pos-service/internal/domain"
	"pos-service/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) repository.PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Save(ctx context.Context, p *domain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *paymentRepo) SaveGuarded(ctx context.Context, p *domain.Payment, orderTotal int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order domain.Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").First(&order, "id = ?", p.OrderID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		// re-sum under the order lock so concurrent checkouts serialize here
		var paid int64
		err = tx.Model(&domain.Payment{}).
			Where("order_id = ? AND status = ?", p.OrderID, domain.PaymentCompleted).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&paid).Error
		if err != nil {
			return err
		}
		if paid+p.Amount > orderTotal {
			return &domain.ValidationError{Field: "amount", Reason: "payment would exceed order total"}
		}
		return tx.Create(p).Error
	})
}

func (r *paymentRepo) FindByID(ctx context.Context, id string) (*domain.Payment, error) {
	var p domain.Payment
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepo) ListByOrder(ctx context.Context, orderID string) ([]domain.Payment, error) {
	var out []domain.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *paymentRepo) SumCompleted(ctx context.Context, orderID string) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("order_id = ? AND status = ?", orderID, domain.PaymentCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *paymentRepo) RevenueSince(ctx context.Context, since time.Time) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("status = ? AND created_at >= ?", domain.PaymentCompleted, since).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}
