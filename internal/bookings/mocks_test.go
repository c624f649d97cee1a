package bookings

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var errRepoDown = errors.New("repository unavailable")

// MockBookingRepo implements BookingRepo for testing
type MockBookingRepo struct {
	bookings map[uuid.UUID]*Booking

	CreateFunc       func(ctx context.Context, booking *Booking) error
	GetFunc          func(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListFunc         func(ctx context.Context) ([]*Booking, error)
	ListByStatusFunc func(ctx context.Context, status string) ([]*Booking, error)
	SaveFunc         func(ctx context.Context, booking *Booking) error
}

func NewMockBookingRepo() *MockBookingRepo {
	return &MockBookingRepo{
		bookings: make(map[uuid.UUID]*Booking),
	}
}

func (m *MockBookingRepo) Create(ctx context.Context, booking *Booking) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, booking)
	}
	m.bookings[booking.ID] = booking
	return nil
}

func (m *MockBookingRepo) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	booking, exists := m.bookings[id]
	if !exists {
		return nil, ErrNotFound
	}
	return booking, nil
}

func (m *MockBookingRepo) List(ctx context.Context) ([]*Booking, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	list := make([]*Booking, 0, len(m.bookings))
	for _, booking := range m.bookings {
		list = append(list, booking)
	}
	return list, nil
}

func (m *MockBookingRepo) ListByStatus(ctx context.Context, status string) ([]*Booking, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, status)
	}
	list := make([]*Booking, 0, len(m.bookings))
	for _, booking := range m.bookings {
		if booking.Status == status {
			list = append(list, booking)
		}
	}
	return list, nil
}

func (m *MockBookingRepo) Save(ctx context.Context, booking *Booking) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, booking)
	}
	if _, exists := m.bookings[booking.ID]; !exists {
		return ErrNotFound
	}
	m.bookings[booking.ID] = booking
	return nil
}

func (m *MockBookingRepo) AddBooking(booking *Booking) {
	m.bookings[booking.ID] = booking
}
