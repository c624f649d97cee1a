package orders

import (
	"context"
	"strings"
)

type CheckoutRequest struct {
	CustomerName    string      `json:"customer_name"`
	CustomerPhone   string      `json:"customer_phone"`
	CustomerAddress string      `json:"customer_address"`
	Items           []OrderItem `json:"items"`
}

func ValidateCheckout(ctx context.Context, req CheckoutRequest) []string {
	var errors []string

	if strings.TrimSpace(req.CustomerName) == "" {
		errors = append(errors, "customer_name is required")
	}

	if strings.TrimSpace(req.CustomerPhone) == "" {
		errors = append(errors, "customer_phone is required")
	}

	if strings.TrimSpace(req.CustomerAddress) == "" {
		errors = append(errors, "customer_address is required")
	}

	if len(req.Items) == 0 {
		errors = append(errors, "at least one item is required")
	}

	for _, it := range req.Items {
		if strings.TrimSpace(it.Name) == "" {
			errors = append(errors, "item name is required")
		}
		if it.Quantity <= 0 {
			errors = append(errors, "item quantity must be greater than 0")
		}
		if it.Price < 0 {
			errors = append(errors, "item price cannot be negative")
		}
	}

	return errors
}
