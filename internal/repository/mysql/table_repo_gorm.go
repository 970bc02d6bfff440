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

type tableRepo struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) repository.TableRepository {
	return &tableRepo{db: db}
}

func (r *tableRepo) Create(ctx context.Context, t *domain.Table) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tableRepo) FindByID(ctx context.Context, id string) (*domain.Table, error) {
	var t domain.Table
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *tableRepo) FindByNumber(ctx context.Context, number int) (*domain.Table, error) {
	var t domain.Table
	err := r.db.WithContext(ctx).First(&t, "number = ?", number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *tableRepo) List(ctx context.Context, status *domain.TableStatus, location string) ([]domain.Table, error) {
	q := r.db.WithContext(ctx).Where("archived_at IS NULL")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if location != "" {
		q = q.Where("location = ?", location)
	}
	var out []domain.Table
	if err := q.Order("number ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tableRepo) SetStatus(ctx context.Context, id string, to domain.TableStatus, reservationTag *string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lockVacantTable(tx, id); err != nil {
			return err
		}
		return tx.Model(&domain.Table{}).Where("id = ?", id).
			Updates(map[string]any{"status": to, "reservation_tag": reservationTag}).Error
	})
}

func (r *tableRepo) Archive(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lockVacantTable(tx, id); err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(&domain.Table{}).Where("id = ?", id).
			Update("archived_at", &now).Error
	})
}

// lockVacantTable takes the table's row lock and verifies it has no active
// orders. A concurrent DINE_IN create locks the same row, so the count here
// cannot race with an order seating at the table.
func (r *tableRepo) lockVacantTable(tx *gorm.DB, id string) error {
	var t domain.Table
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&t, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	if t.ArchivedAt != nil {
		return domain.ErrNotFound
	}
	var active int64
	err = tx.Model(&domain.Order{}).
		Where("table_id = ? AND status IN ?", id, activeStatuses).
		Count(&active).Error
	if err != nil {
		return err
	}
	if active > 0 {
		return &domain.TableUnavailableError{TableID: id, Status: domain.TableOccupied}
	}
	return nil
}
