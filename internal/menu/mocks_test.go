package menu

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var errRepoDown = errors.New("repository unavailable")

// MockItemRepo implements ItemRepo for testing
type MockItemRepo struct {
	items map[uuid.UUID]*Item

	CreateFunc         func(ctx context.Context, item *Item) error
	GetFunc            func(ctx context.Context, id uuid.UUID) (*Item, error)
	ListFunc           func(ctx context.Context) ([]*Item, error)
	ListAvailableFunc  func(ctx context.Context) ([]*Item, error)
	ListByCategoryFunc func(ctx context.Context, category string) ([]*Item, error)
	SaveFunc           func(ctx context.Context, item *Item) error
	DeleteFunc         func(ctx context.Context, id uuid.UUID) error
}

func NewMockItemRepo() *MockItemRepo {
	return &MockItemRepo{
		items: make(map[uuid.UUID]*Item),
	}
}

func (m *MockItemRepo) Create(ctx context.Context, item *Item) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, item)
	}
	m.items[item.ID] = item
	return nil
}

func (m *MockItemRepo) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	item, exists := m.items[id]
	if !exists {
		return nil, ErrNotFound
	}
	return item, nil
}

func (m *MockItemRepo) List(ctx context.Context) ([]*Item, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	list := make([]*Item, 0, len(m.items))
	for _, item := range m.items {
		list = append(list, item)
	}
	return list, nil
}

func (m *MockItemRepo) ListAvailable(ctx context.Context) ([]*Item, error) {
	if m.ListAvailableFunc != nil {
		return m.ListAvailableFunc(ctx)
	}
	list := make([]*Item, 0, len(m.items))
	for _, item := range m.items {
		if item.IsAvailable() {
			list = append(list, item)
		}
	}
	return list, nil
}

func (m *MockItemRepo) ListByCategory(ctx context.Context, category string) ([]*Item, error) {
	if m.ListByCategoryFunc != nil {
		return m.ListByCategoryFunc(ctx, category)
	}
	list := make([]*Item, 0, len(m.items))
	for _, item := range m.items {
		if item.Category == category {
			list = append(list, item)
		}
	}
	return list, nil
}

func (m *MockItemRepo) Save(ctx context.Context, item *Item) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, item)
	}
	if _, exists := m.items[item.ID]; !exists {
		return ErrNotFound
	}
	m.items[item.ID] = item
	return nil
}

func (m *MockItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	delete(m.items, id)
	return nil
}

func (m *MockItemRepo) AddItem(item *Item) {
	m.items[item.ID] = item
}
