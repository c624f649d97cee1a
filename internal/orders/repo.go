package orders

import (
	"context"
	"errors"
)

var (
	ErrDuplicateOrderNumber = errors.New("order number already exists")
	ErrVersionConflict      = errors.New("order was modified concurrently")
	ErrNotFound             = errors.New("order not found")
)

type OrderFilter struct {
	Status *string
	Limit  int
	Offset int
}

type OrderRepository interface {
	Create(ctx context.Context, o *Order) error
	// Update persists the order only if the stored model_version matches
	// expectedVersion, incrementing it on success. A stale writer gets
	// ErrVersionConflict instead of silently overwriting.
	Update(ctx context.Context, o *Order, expectedVersion int) error
	FindByID(ctx context.Context, id OrderID) (*Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*Order, error)
	List(ctx context.Context, filter OrderFilter) ([]Order, error)
}
