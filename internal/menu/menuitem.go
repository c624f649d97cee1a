package menu

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	StatusAvailable   = "available"
	StatusUnavailable = "unavailable"
)

// Item represents a dish or drink offered on the storefront.
type Item struct {
	ID          uuid.UUID `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Category    string    `json:"category" bson:"category"`
	Price       float64   `json:"price" bson:"price"`
	Description string    `json:"description" bson:"description"`
	Image       string    `json:"image" bson:"image"`
	Status      string    `json:"status" bson:"status"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

func (i *Item) GetID() uuid.UUID {
	return i.ID
}

func (i *Item) ResourceType() string {
	return "menu/item"
}

func (i *Item) EnsureID() {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
}

func (i *Item) BeforeCreate() {
	i.EnsureID()
	now := time.Now()
	i.CreatedAt = now
	i.UpdatedAt = now
	if i.Status == "" {
		i.Status = StatusAvailable
	}
}

func (i *Item) BeforeUpdate() {
	i.UpdatedAt = time.Now()
}

func (i *Item) IsAvailable() bool {
	return i.Status == StatusAvailable
}

// ValidStatus reports whether s is a known item status.
func ValidStatus(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case StatusAvailable, StatusUnavailable:
		return true
	}
	return false
}
