package menu

import (
	"context"
	"strings"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateItem validates a menu item before creation or update.
func ValidateItem(ctx context.Context, item *Item) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(item.Name) == "" {
		errors = append(errors, ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if strings.TrimSpace(item.Category) == "" {
		errors = append(errors, ValidationError{
			Field:   "category",
			Message: "category is required",
		})
	}

	if item.Price < 0 {
		errors = append(errors, ValidationError{
			Field:   "price",
			Message: "price cannot be negative",
		})
	}

	if item.Status != "" && !ValidStatus(item.Status) {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: "status must be available or unavailable",
		})
	}

	return errors
}
