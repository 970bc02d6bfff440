package services

import (
	"context"

	"pos-service/internal/domain"
	"pos-service/internal/repository"

	"github.com/google/uuid"
)

type TableService struct {
	tables repository.TableRepository
}

func NewTableService(r repository.TableRepository) *TableService {
	return &TableService{tables: r}
}

type CreateTableInput struct {
	Number   int
	Capacity int
	Location string
	QRCode   *string
}

func (s *TableService) CreateTable(ctx context.Context, actor domain.Actor, in CreateTableInput) (*domain.Table, error) {
	if !actor.Elevated() {
		return nil, domain.ErrUnauthorized
	}
	if in.Number <= 0 {
		return nil, &domain.ValidationError{Field: "number", Reason: "table number must be positive"}
	}
	if in.Capacity <= 0 {
		return nil, &domain.ValidationError{Field: "capacity", Reason: "capacity must be positive"}
	}
	existing, err := s.tables.FindByNumber(ctx, in.Number)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.ValidationError{Field: "number", Reason: "table number already in use"}
	}

	t := &domain.Table{
		ID:       uuid.NewString(),
		Number:   in.Number,
		Capacity: in.Capacity,
		Location: in.Location,
		Status:   domain.TableAvailable,
		QRCode:   in.QRCode,
	}
	if err := s.tables.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// SetStatus is the explicit staff action on a table. OCCUPIED is derived
// from orders and cannot be set here, and a table with active orders cannot
// be released out from under them.
func (s *TableService) SetStatus(ctx context.Context, actor domain.Actor, tableID string, to domain.TableStatus, reservationTag *string) (*domain.Table, error) {
	if !actor.Role.IsStaff() {
		return nil, domain.ErrUnauthorized
	}
	if !to.IsValid() {
		return nil, &domain.ValidationError{Field: "status", Reason: "unknown table status"}
	}
	if to == domain.TableOccupied {
		return nil, &domain.ValidationError{Field: "status", Reason: "OCCUPIED is derived from orders"}
	}
	if to != domain.TableReserved && reservationTag != nil {
		return nil, &domain.ValidationError{Field: "reservationTag", Reason: "reservation tag only applies to RESERVED"}
	}

	t, err := s.tables.FindByID(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if t == nil || t.ArchivedAt != nil {
		return nil, domain.ErrNotFound
	}

	// the repository rechecks for active orders under the table row lock
	if err := s.tables.SetStatus(ctx, tableID, to, reservationTag); err != nil {
		return nil, err
	}
	t.Status = to
	t.ReservationTag = reservationTag
	return t, nil
}

func (s *TableService) GetTableByID(ctx context.Context, id string) (*domain.Table, error) {
	t, err := s.tables.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (s *TableService) ListTables(ctx context.Context, status *domain.TableStatus, location string) ([]domain.Table, error) {
	if status != nil && !status.IsValid() {
		return nil, &domain.ValidationError{Field: "status", Reason: "unknown table status"}
	}
	return s.tables.List(ctx, status, location)
}

// DisableTable soft-disables a table; historical orders keep referencing it.
// The repository rejects the archive while the table still has active orders.
func (s *TableService) DisableTable(ctx context.Context, actor domain.Actor, tableID string) error {
	if !actor.Elevated() {
		return domain.ErrUnauthorized
	}
	return s.tables.Archive(ctx, tableID)
}
