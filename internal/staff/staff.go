package staff

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("staff member not found")

// Member represents an employee shown on the back-office staff roster.
type Member struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Role      string    `json:"role" bson:"role"`
	Email     string    `json:"email" bson:"email"`
	Phone     string    `json:"phone" bson:"phone"`
	Image     string    `json:"image,omitempty" bson:"image,omitempty"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (m *Member) GetID() uuid.UUID {
	return m.ID
}

func (m *Member) ResourceType() string {
	return "staff"
}

func (m *Member) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
}

func (m *Member) BeforeCreate() {
	m.EnsureID()
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
}

func (m *Member) BeforeUpdate() {
	m.UpdatedAt = time.Now()
}

// MemberRepo defines the repository interface for staff members
type MemberRepo interface {
	Create(ctx context.Context, member *Member) error
	Get(ctx context.Context, id uuid.UUID) (*Member, error)
	List(ctx context.Context) ([]*Member, error)
	Save(ctx context.Context, member *Member) error
	Delete(ctx context.Context, id uuid.UUID) error
}
