package repository

import (
	"context"

	"pos-service/internal/domain"
)

// OrderRepository persists orders. Status-changing writes are
// compare-and-set: they only commit if the stored status still matches what
// the caller observed, and they fold the table-occupancy update into the same
// transaction so readers never see the two disagree.
type OrderRepository interface {
	// Create inserts the order and, for DINE_IN, claims the table
	// atomically. It fails with *domain.TableUnavailableError when the
	// table is OCCUPIED, CLEANING, or RESERVED under a different
	// reservation tag.
	Create(ctx context.Context, o *domain.Order, reservationTag *string) error

	// FindByID returns (nil, nil) when the id does not resolve.
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	ListByTable(ctx context.Context, tableID string) ([]domain.Order, error)

	// CommitTransition writes o's status (and estimated completion time)
	// where the stored status still equals from, then rechecks the table's
	// occupancy in the same transaction. A stale write fails with
	// *domain.InvalidTransitionError carrying the current stored status.
	CommitTransition(ctx context.Context, o *domain.Order, from domain.OrderStatus) error

	// ReplaceItems swaps the line items and totals, guarded on the stored
	// status still being PLACED.
	ReplaceItems(ctx context.Context, o *domain.Order) error

	// CountByStatus returns order counts grouped by status. Statuses with
	// no orders are absent from the map.
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error)
}
