package orders

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/meetupclub/meetup/pkg/enums/orderstatus"
)

var (
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrOTPMismatch        = errors.New("delivery code does not match")
	ErrOTPNotIssued       = errors.New("delivery code has not been issued")
	ErrTooManyOTPAttempts = errors.New("too many delivery code attempts")
)

// transitions is the legal forward graph for an order. Orders move along the
// forward path with a single branch point (pending -> cancelled) and a
// terminal confirmation step gated by the delivery code.
var transitions = map[string][]string{
	orderstatus.Statuses.Pending.Code(): {
		orderstatus.Statuses.Preparing.Code(),
		orderstatus.Statuses.Cancelled.Code(),
	},
	orderstatus.Statuses.Preparing.Code(): {
		orderstatus.Statuses.Prepared.Code(),
	},
	orderstatus.Statuses.Prepared.Code(): {
		orderstatus.Statuses.OutForDelivery.Code(),
	},
	orderstatus.Statuses.OutForDelivery.Code(): {
		orderstatus.Statuses.Delivered.Code(),
	},
	orderstatus.Statuses.Delivered.Code(): {},
	orderstatus.Statuses.Cancelled.Code(): {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the legal next statuses for the given status. The
// admin console uses this to offer only valid actions per order.
func NextStatuses(status string) []string {
	next := transitions[status]
	out := make([]string, len(next))
	copy(out, next)
	return out
}

// IsTerminal reports whether no further transitions are possible.
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}

func (o *Order) transitionTo(status string) error {
	if !CanTransition(o.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, status)
	}
	o.Status = status
	o.BeforeUpdate()
	return nil
}

// MarkPreparing moves a pending order into preparation.
func (o *Order) MarkPreparing() error {
	return o.transitionTo(orderstatus.Statuses.Preparing.Code())
}

// MarkPrepared marks a preparing order as packed and ready.
func (o *Order) MarkPrepared() error {
	return o.transitionTo(orderstatus.Statuses.Prepared.Code())
}

// Dispatch sends a prepared order out for delivery and issues the delivery
// code. The code is generated exactly once; it is never regenerated or
// cleared afterwards.
func (o *Order) Dispatch() error {
	if err := o.transitionTo(orderstatus.Statuses.OutForDelivery.Code()); err != nil {
		return err
	}
	if o.DeliveryOTP == nil {
		code := NewDeliveryOTP()
		o.DeliveryOTP = &code
	}
	return nil
}

// Deliver confirms physical receipt. The supplied code must equal the stored
// delivery code exactly; on mismatch the order is left untouched.
func (o *Order) Deliver(code string) error {
	if !CanTransition(o.Status, orderstatus.Statuses.Delivered.Code()) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, orderstatus.Statuses.Delivered.Code())
	}
	if o.DeliveryOTP == nil {
		return ErrOTPNotIssued
	}
	if code != *o.DeliveryOTP {
		return ErrOTPMismatch
	}
	o.Status = orderstatus.Statuses.Delivered.Code()
	o.OTPVerified = true
	o.BeforeUpdate()
	return nil
}

// Cancel rejects a pending order.
func (o *Order) Cancel() error {
	return o.transitionTo(orderstatus.Statuses.Cancelled.Code())
}

// NewDeliveryOTP generates a uniformly random 4-digit code in [1000, 9999].
// The range excludes leading zeros by construction.
func NewDeliveryOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%d", n.Int64()+1000)
}

// OTPLimiter bounds delivery code attempts per order so a courier cannot
// brute-force the 4-digit space.
type OTPLimiter struct {
	mu       sync.Mutex
	limiters map[uuid.UUID]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewOTPLimiter(limit rate.Limit, burst int) *OTPLimiter {
	return &OTPLimiter{
		limiters: make(map[uuid.UUID]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

// Allow reports whether another attempt is permitted for the given order.
func (l *OTPLimiter) Allow(orderID uuid.UUID) bool {
	l.mu.Lock()
	lim, ok := l.limiters[orderID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[orderID] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// Forget drops the limiter state for an order, typically after delivery.
func (l *OTPLimiter) Forget(orderID uuid.UUID) {
	l.mu.Lock()
	delete(l.limiters, orderID)
	l.mu.Unlock()
}
