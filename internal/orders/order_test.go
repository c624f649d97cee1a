package orders

import (
	"strings"
	"testing"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name         string
		items        []OrderItem
		wantSubtotal float64
		wantTotal    float64
	}{
		{
			name: "twoLineItems",
			items: []OrderItem{
				{Name: "Pizza", Price: 100, Quantity: 2},
				{Name: "Lassi", Price: 50, Quantity: 1},
			},
			wantSubtotal: 250,
			wantTotal:    310,
		},
		{
			name: "singleItem",
			items: []OrderItem{
				{Name: "Burger", Price: 320, Quantity: 1},
			},
			wantSubtotal: 320,
			wantTotal:    380,
		},
		{
			name:         "noItems",
			items:        nil,
			wantSubtotal: 0,
			wantTotal:    60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := NewOrder()
			order.Items = tt.items
			order.ComputeTotals()

			if order.Subtotal != tt.wantSubtotal {
				t.Errorf("Subtotal = %v, want %v", order.Subtotal, tt.wantSubtotal)
			}
			if order.Tax != 0 {
				t.Errorf("Tax = %v, want 0", order.Tax)
			}
			if order.DeliveryFee != DeliveryFee {
				t.Errorf("DeliveryFee = %v, want %v", order.DeliveryFee, DeliveryFee)
			}
			if order.Total != tt.wantTotal {
				t.Errorf("Total = %v, want %v", order.Total, tt.wantTotal)
			}
		})
	}
}

func TestNewOrderDefaults(t *testing.T) {
	order := NewOrder()

	if order.Status != "pending" {
		t.Errorf("Status = %s, want pending", order.Status)
	}
	if order.PaymentMethod != PaymentCashOnDelivery {
		t.Errorf("PaymentMethod = %s, want %s", order.PaymentMethod, PaymentCashOnDelivery)
	}
	if order.DeliveryOTP != nil {
		t.Error("new order should have no delivery code")
	}
	if order.OrderNumber == "" {
		t.Error("new order should have an order number")
	}
}

func TestNewOrderNumberFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		number := NewOrderNumber()
		if !strings.HasPrefix(number, "ORD-") {
			t.Fatalf("order number %q missing ORD- prefix", number)
		}
		suffix := strings.TrimPrefix(number, "ORD-")
		if len(suffix) != 6 {
			t.Fatalf("order number suffix %q is not 6 characters", suffix)
		}
		for _, r := range suffix {
			if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
				t.Fatalf("order number %q contains invalid character %q", number, r)
			}
		}
		seen[number] = true
	}
	if len(seen) < 90 {
		t.Errorf("order numbers look far from unique: %d distinct out of 100", len(seen))
	}
}

func TestNormalizeOrderNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ord-9999ab", "ORD-9999AB"},
		{"  ORD-9999AB  ", "ORD-9999AB"},
		{"Ord-9999ab", "ORD-9999AB"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeOrderNumber(tt.in); got != tt.want {
			t.Errorf("NormalizeOrderNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBeforeCreateSetsVersion(t *testing.T) {
	order := NewOrder()
	order.BeforeCreate()

	if order.ModelVersion != 1 {
		t.Errorf("ModelVersion = %d, want 1", order.ModelVersion)
	}
	if order.CreatedAt.IsZero() || order.UpdatedAt.IsZero() {
		t.Error("timestamps should be set on create")
	}
}

func TestItemCount(t *testing.T) {
	order := NewOrder()
	order.Items = []OrderItem{
		{Name: "Pizza", Price: 100, Quantity: 2},
		{Name: "Wings", Price: 280, Quantity: 3},
	}

	if got := order.ItemCount(); got != 5 {
		t.Errorf("ItemCount() = %d, want 5", got)
	}
}
