package mysql

import (
	"context"
	"errors"

	"pos-service/internal/domain"
	"pos-service/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var activeStatuses = []domain.OrderStatus{
	domain.StatusPlaced,
	domain.StatusPreparing,
	domain.StatusReady,
	domain.StatusDelivering,
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, o *domain.Order, reservationTag *string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if o.Type == domain.TypeDineIn {
			var table domain.Table
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&table, "id = ?", *o.TableID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrNotFound
				}
				return err
			}
			if table.ArchivedAt != nil {
				return &domain.TableUnavailableError{TableID: table.ID, Status: table.Status}
			}
			switch table.Status {
			case domain.TableOccupied, domain.TableCleaning:
				return &domain.TableUnavailableError{TableID: table.ID, Status: table.Status}
			case domain.TableReserved:
				// only the reservation's own booking may seat here
				if reservationTag == nil || table.ReservationTag == nil || *reservationTag != *table.ReservationTag {
					return &domain.TableUnavailableError{TableID: table.ID, Status: table.Status}
				}
			}
			err = tx.Model(&domain.Table{}).Where("id = ?", table.ID).
				Update("status", domain.TableOccupied).Error
			if err != nil {
				return err
			}
		}
		if err := tx.Create(o).Error; err != nil {
			logrus.WithError(err).Error("order insert failed")
			return err
		}
		return nil
	})
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) ListByTable(ctx context.Context, tableID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("table_id = ?", tableID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CommitTransition is the compare-and-set write for the state machine: the
// UPDATE is guarded on the status the caller observed, and the table's
// occupancy is re-derived inside the same transaction so order and table
// never disagree.
func (r *orderRepo) CommitTransition(ctx context.Context, o *domain.Order, from domain.OrderStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Order{}).
			Where("id = ? AND status = ?", o.ID, from).
			Updates(map[string]any{
				"status":                    o.Status,
				"estimated_completion_time": o.EstimatedCompletionTime,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var current domain.Order
			err := tx.Select("status").First(&current, "id = ?", o.ID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrNotFound
				}
				return err
			}
			return &domain.InvalidTransitionError{From: current.Status, To: o.Status}
		}
		if o.Status.IsTerminal() && o.Type == domain.TypeDineIn && o.TableID != nil {
			return syncTableOccupancy(tx, *o.TableID)
		}
		return nil
	})
}

// syncTableOccupancy flips the table to CLEANING once its last active order
// reaches a terminal status. Leaving CLEANING is an explicit staff action.
func syncTableOccupancy(tx *gorm.DB, tableID string) error {
	var n int64
	err := tx.Model(&domain.Order{}).
		Where("table_id = ? AND status IN ?", tableID, activeStatuses).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return tx.Model(&domain.Table{}).
		Where("id = ? AND status = ?", tableID, domain.TableOccupied).
		Updates(map[string]any{"status": domain.TableCleaning, "reservation_tag": nil}).Error
}

func (r *orderRepo) ReplaceItems(ctx context.Context, o *domain.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Order{}).
			Where("id = ? AND status = ?", o.ID, domain.StatusPlaced).
			Updates(map[string]any{
				"subtotal": o.Subtotal,
				"tax":      o.Tax,
				"tip":      o.Tip,
				"total":    o.Total,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var current domain.Order
			err := tx.Select("status").First(&current, "id = ?", o.ID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrNotFound
				}
				return err
			}
			return &domain.ValidationError{Field: "items", Reason: "line items are only editable while PLACED"}
		}
		if err := tx.Where("order_id = ?", o.ID).Delete(&domain.OrderItem{}).Error; err != nil {
			return err
		}
		for i := range o.Items {
			o.Items[i].ID = 0
			o.Items[i].OrderID = o.ID
		}
		return tx.Create(&o.Items).Error
	})
}

func (r *orderRepo) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	var rows []struct {
		Status domain.OrderStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.OrderStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
