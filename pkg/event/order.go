package event

import "time"

const (
	OrdersTopic             = "orders.events"
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

type OrderEventMetadata struct {
	EventType   string    `json:"event_type"`
	OccurredAt  time.Time `json:"occurred_at"`
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`

	// Denormalized data for console display
	CustomerName  string  `json:"customer_name,omitempty"`
	CustomerPhone string  `json:"customer_phone,omitempty"`
	Total         float64 `json:"total,omitempty"`
}

type OrderCreatedEvent struct {
	OrderEventMetadata
	Status    string    `json:"status"`
	ItemCount int       `json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderStatusChangedEvent struct {
	OrderEventMetadata
	NewStatus      string `json:"new_status"`
	PreviousStatus string `json:"previous_status"`
	DeliveryOTP    string `json:"delivery_otp,omitempty"`
	OTPVerified    bool   `json:"otp_verified"`
	ModelVersion   int    `json:"model_version"`
}
