package menu

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("menu item not found")

// ItemRepo defines the repository interface for menu items
type ItemRepo interface {
	Create(ctx context.Context, item *Item) error
	Get(ctx context.Context, id uuid.UUID) (*Item, error)
	List(ctx context.Context) ([]*Item, error)
	ListAvailable(ctx context.Context) ([]*Item, error)
	ListByCategory(ctx context.Context, category string) ([]*Item, error)
	Save(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id uuid.UUID) error
}
