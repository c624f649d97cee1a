package bookings

import (
	"time"

	"github.com/google/uuid"

	"github.com/meetupclub/meetup/pkg/enums/bookingstatus"
)

// Booking represents a table reservation request made from the storefront.
type Booking struct {
	ID             uuid.UUID `json:"id" bson:"_id"`
	CustomerName   string    `json:"customer_name" bson:"customer_name"`
	Email          string    `json:"email" bson:"email"`
	Phone          string    `json:"phone" bson:"phone"`
	Guests         int       `json:"guests" bson:"guests"`
	BookingDate    string    `json:"booking_date" bson:"booking_date"` // Format: "YYYY-MM-DD"
	BookingTime    string    `json:"booking_time" bson:"booking_time"` // Format: "HH:MM"
	SpecialRequest string    `json:"special_request,omitempty" bson:"special_request,omitempty"`
	Status         string    `json:"status" bson:"status"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

func (b *Booking) GetID() uuid.UUID {
	return b.ID
}

func (b *Booking) ResourceType() string {
	return "booking"
}

func (b *Booking) EnsureID() {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
}

func (b *Booking) BeforeCreate() {
	b.EnsureID()
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.Status == "" {
		b.Status = bookingstatus.Statuses.Pending.Code()
	}
}

func (b *Booking) BeforeUpdate() {
	b.UpdatedAt = time.Now()
}

// Confirm moves the booking to confirmed. Cancelled bookings stay cancelled.
func (b *Booking) Confirm() error {
	if b.Status == bookingstatus.Statuses.Cancelled.Code() {
		return ErrBookingClosed
	}
	b.Status = bookingstatus.Statuses.Confirmed.Code()
	b.BeforeUpdate()
	return nil
}

// Cancel moves the booking to cancelled from any open state.
func (b *Booking) Cancel() error {
	if b.Status == bookingstatus.Statuses.Cancelled.Code() {
		return ErrBookingClosed
	}
	b.Status = bookingstatus.Statuses.Cancelled.Code()
	b.BeforeUpdate()
	return nil
}
