package orders

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"

	"github.com/meetupclub/meetup/pkg/enums/orderstatus"
)

type OrderID = uuid.UUID

const (
	// DeliveryFee is the flat fee added to every order at checkout.
	DeliveryFee = 60.0

	PaymentCashOnDelivery = "Cash on Delivery"

	orderNumberPrefix  = "ORD-"
	orderNumberLength  = 6
	orderNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// OrderItem is a snapshot of a menu item at the moment the order was placed.
// It is intentionally not a live reference to the menu.
type OrderItem struct {
	ID       uuid.UUID `json:"id" bson:"id"`
	Name     string    `json:"name" bson:"name"`
	Price    float64   `json:"price" bson:"price"`
	Quantity int       `json:"quantity" bson:"quantity"`
}

// Order is the aggregate root for the ordering domain.
type Order struct {
	ID              OrderID     `json:"id" bson:"_id"`
	OrderNumber     string      `json:"order_number" bson:"order_number"`
	CustomerName    string      `json:"customer_name" bson:"customer_name"`
	CustomerPhone   string      `json:"customer_phone" bson:"customer_phone"`
	CustomerAddress string      `json:"customer_address" bson:"customer_address"`
	Items           []OrderItem `json:"items" bson:"items"`
	Subtotal        float64     `json:"subtotal" bson:"subtotal"`
	Tax             float64     `json:"tax" bson:"tax"`
	DeliveryFee     float64     `json:"delivery_fee" bson:"delivery_fee"`
	Total           float64     `json:"total" bson:"total"`
	PaymentMethod   string      `json:"payment_method" bson:"payment_method"`
	Status          string      `json:"status" bson:"status"`
	DeliveryOTP     *string     `json:"delivery_otp,omitempty" bson:"delivery_otp,omitempty"`
	OTPVerified     bool        `json:"otp_verified" bson:"otp_verified"`
	CreatedAt       time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" bson:"updated_at"`

	ModelVersion int `json:"model_version" bson:"model_version"`
}

func (o *Order) GetID() uuid.UUID {
	return o.ID
}

func (o *Order) ResourceType() string {
	return "order"
}

func (o *Order) SetID(id uuid.UUID) {
	o.ID = id
}

// NewOrder creates a pending order with a generated ID and order number.
func NewOrder() *Order {
	return &Order{
		ID:            aqm.GenerateNewID(),
		OrderNumber:   NewOrderNumber(),
		Status:        orderstatus.Statuses.Pending.Code(),
		PaymentMethod: PaymentCashOnDelivery,
	}
}

func (o *Order) EnsureID() {
	if o.ID == uuid.Nil {
		o.ID = aqm.GenerateNewID()
	}
}

func (o *Order) BeforeCreate() {
	o.EnsureID()
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.ModelVersion == 0 {
		o.ModelVersion = 1
	}
}

func (o *Order) BeforeUpdate() {
	o.UpdatedAt = time.Now()
}

// ComputeTotals sets subtotal, tax, delivery fee and total from the item
// snapshots. Totals are fixed at creation time and never recomputed afterwards.
func (o *Order) ComputeTotals() {
	var subtotal float64
	for _, it := range o.Items {
		subtotal += it.Price * float64(it.Quantity)
	}
	o.Subtotal = subtotal
	o.Tax = 0
	o.DeliveryFee = DeliveryFee
	o.Total = o.Subtotal + o.Tax + o.DeliveryFee
}

// ItemCount returns the total number of units across all line items.
func (o *Order) ItemCount() int {
	var count int
	for _, it := range o.Items {
		count += it.Quantity
	}
	return count
}

// NewOrderNumber generates a customer-facing tracking identifier.
// Uniqueness is enforced by the store; callers retry on collision.
func NewOrderNumber() string {
	var b strings.Builder
	b.WriteString(orderNumberPrefix)
	max := big.NewInt(int64(len(orderNumberCharset)))
	for i := 0; i < orderNumberLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken
			panic(err)
		}
		b.WriteByte(orderNumberCharset[n.Int64()])
	}
	return b.String()
}

// NormalizeOrderNumber canonicalizes customer input for lookup.
func NormalizeOrderNumber(number string) string {
	return strings.ToUpper(strings.TrimSpace(number))
}
