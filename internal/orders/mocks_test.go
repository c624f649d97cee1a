package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/meetupclub/meetup/pkg/event"
)

// MockOrderRepository is a test mock for OrderRepository
type MockOrderRepository struct {
	orders         map[uuid.UUID]*Order
	byNumber       map[string]*Order
	CreateFunc     func(ctx context.Context, o *Order) error
	UpdateFunc     func(ctx context.Context, o *Order, expectedVersion int) error
	FindByIDFunc   func(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByNumberFunc func(ctx context.Context, orderNumber string) (*Order, error)
	ListFunc       func(ctx context.Context, filter OrderFilter) ([]Order, error)
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders:   make(map[uuid.UUID]*Order),
		byNumber: make(map[string]*Order),
	}
}

func (m *MockOrderRepository) Create(ctx context.Context, o *Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, o)
	}
	if _, exists := m.byNumber[o.OrderNumber]; exists {
		return ErrDuplicateOrderNumber
	}
	m.orders[o.ID] = o
	m.byNumber[o.OrderNumber] = o
	return nil
}

func (m *MockOrderRepository) Update(ctx context.Context, o *Order, expectedVersion int) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, o, expectedVersion)
	}
	stored, exists := m.orders[o.ID]
	if !exists {
		return ErrNotFound
	}
	if stored.ModelVersion != expectedVersion {
		return ErrVersionConflict
	}
	o.ModelVersion = expectedVersion + 1
	m.orders[o.ID] = o
	m.byNumber[o.OrderNumber] = o
	return nil
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return m.orders[id], nil
}

func (m *MockOrderRepository) FindByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	if m.FindByNumberFunc != nil {
		return m.FindByNumberFunc(ctx, orderNumber)
	}
	return m.byNumber[orderNumber], nil
}

func (m *MockOrderRepository) List(ctx context.Context, filter OrderFilter) ([]Order, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	result := make([]Order, 0, len(m.orders))
	for _, o := range m.orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		result = append(result, *o)
	}
	return result, nil
}

// AddOrder is a helper to seed the mock repository
func (m *MockOrderRepository) AddOrder(o *Order) {
	m.orders[o.ID] = o
	m.byNumber[o.OrderNumber] = o
}

// MockPublisher is a test mock for events.Publisher
type MockPublisher struct {
	PublishedEvents []PublishedEvent
	PublishFunc     func(ctx context.Context, topic string, data []byte) error
}

type PublishedEvent struct {
	Topic string
	Data  []byte
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		PublishedEvents: make([]PublishedEvent, 0),
	}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, data []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, data)
	}
	m.PublishedEvents = append(m.PublishedEvents, PublishedEvent{Topic: topic, Data: data})
	return nil
}

// MockBroadcaster records events the cache pushes to the stream hub
type MockBroadcaster struct {
	Events []*event.OrderStatusChangedEvent
}

func (m *MockBroadcaster) BroadcastOrderEvent(evt *event.OrderStatusChangedEvent) {
	m.Events = append(m.Events, evt)
}

var errRepoDown = errors.New("repository unavailable")
