package bookings

import (
	"context"
	"strings"
	"time"
)

const maxGuests = 20

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateBooking validates a booking request before creation.
func ValidateBooking(ctx context.Context, b *Booking) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(b.CustomerName) == "" {
		errors = append(errors, ValidationError{
			Field:   "customer_name",
			Message: "customer name is required",
		})
	}

	if strings.TrimSpace(b.Email) == "" || !strings.Contains(b.Email, "@") {
		errors = append(errors, ValidationError{
			Field:   "email",
			Message: "a valid email is required",
		})
	}

	if strings.TrimSpace(b.Phone) == "" {
		errors = append(errors, ValidationError{
			Field:   "phone",
			Message: "phone is required",
		})
	}

	if b.Guests < 1 {
		errors = append(errors, ValidationError{
			Field:   "guests",
			Message: "at least one guest is required",
		})
	} else if b.Guests > maxGuests {
		errors = append(errors, ValidationError{
			Field:   "guests",
			Message: "party size exceeds the maximum",
		})
	}

	if _, err := time.Parse("2006-01-02", b.BookingDate); err != nil {
		errors = append(errors, ValidationError{
			Field:   "booking_date",
			Message: "booking date must be YYYY-MM-DD",
		})
	}

	if _, err := time.Parse("15:04", b.BookingTime); err != nil {
		errors = append(errors, ValidationError{
			Field:   "booking_time",
			Message: "booking time must be HH:MM",
		})
	}

	return errors
}
