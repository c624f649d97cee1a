package bookings

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("booking not found")
	ErrBookingClosed = errors.New("booking already cancelled")
)

// BookingRepo defines the repository interface for bookings
type BookingRepo interface {
	Create(ctx context.Context, booking *Booking) error
	Get(ctx context.Context, id uuid.UUID) (*Booking, error)
	List(ctx context.Context) ([]*Booking, error)
	ListByStatus(ctx context.Context, status string) ([]*Booking, error)
	Save(ctx context.Context, booking *Booking) error
}
