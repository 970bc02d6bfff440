package repository

import (
	"context"

	"pos-service/internal/domain"
)

type TableRepository interface {
	Create(ctx context.Context, t *domain.Table) error
	FindByID(ctx context.Context, id string) (*domain.Table, error)
	FindByNumber(ctx context.Context, number int) (*domain.Table, error)

	// List filters by status and/or location when non-zero. Archived tables
	// are excluded.
	List(ctx context.Context, status *domain.TableStatus, location string) ([]domain.Table, error)

	// SetStatus and Archive run in a transaction that locks the table row
	// and recounts its non-terminal orders, so a concurrent order create
	// cannot seat at a table while it is being released or retired. Both
	// fail with *domain.TableUnavailableError while active orders exist.
	SetStatus(ctx context.Context, id string, to domain.TableStatus, reservationTag *string) error
	Archive(ctx context.Context, id string) error
}
