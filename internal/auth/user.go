package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aquamarinepk/aqm"
	authpkg "github.com/aquamarinepk/aqm/auth"
	"github.com/google/uuid"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is a back-office account. Passwords are stored salted and hashed;
// the plaintext never leaves the signin handler.
type User struct {
	ID           uuid.UUID          `json:"id" bson:"_id"`
	Email        string             `json:"email" bson:"email"`
	Name         string             `json:"name" bson:"name"`
	PasswordHash []byte             `json:"-" bson:"pass_hash"`
	PasswordSalt []byte             `json:"-" bson:"pass_salt"`
	Status       authpkg.UserStatus `json:"status" bson:"status"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

func (u *User) GetID() uuid.UUID {
	return u.ID
}

func (u *User) ResourceType() string {
	return "user"
}

func NewUser() *User {
	return &User{
		ID:     aqm.GenerateNewID(),
		Status: authpkg.UserStatusActive,
	}
}

func (u *User) EnsureID() {
	if u.ID == uuid.Nil {
		u.ID = aqm.GenerateNewID()
	}
}

func (u *User) BeforeCreate() {
	u.EnsureID()
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Email = authpkg.NormalizeEmail(u.Email)
	u.Name = strings.TrimSpace(u.Name)
}

func (u *User) BeforeUpdate() {
	u.UpdatedAt = time.Now()
	u.Email = authpkg.NormalizeEmail(u.Email)
	u.Name = strings.TrimSpace(u.Name)
}

// SetPassword derives a fresh salt and hash for the given plaintext.
func (u *User) SetPassword(password string) error {
	salt, err := authpkg.GeneratePasswordSalt()
	if err != nil {
		return err
	}
	u.PasswordSalt = salt
	u.PasswordHash = authpkg.HashPassword([]byte(password), salt)
	return nil
}

// CheckPassword verifies the plaintext against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return authpkg.VerifyPasswordHash([]byte(password), u.PasswordHash, u.PasswordSalt)
}

// UserRepo defines the repository interface for back-office accounts
type UserRepo interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) error
}
