package auth

import (
	"context"
	"errors"

	authpkg "github.com/aquamarinepk/aqm/auth"
)

var errRepoDown = errors.New("repository unavailable")

// MockUserRepo implements UserRepo for testing
type MockUserRepo struct {
	users map[string]*User

	CreateFunc     func(ctx context.Context, user *User) error
	GetByEmailFunc func(ctx context.Context, email string) (*User, error)
	SaveFunc       func(ctx context.Context, user *User) error
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{
		users: make(map[string]*User),
	}
}

func (m *MockUserRepo) Create(ctx context.Context, user *User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.users[user.Email] = user
	return nil
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	user, exists := m.users[email]
	if !exists {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (m *MockUserRepo) Save(ctx context.Context, user *User) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, user)
	}
	m.users[user.Email] = user
	return nil
}

// newActiveUser builds a ready-to-use account with the given credentials.
func newActiveUser(t interface{ Fatalf(string, ...interface{}) }, email, password string) *User {
	user := NewUser()
	user.Email = email
	user.Name = "Admin"
	if err := user.SetPassword(password); err != nil {
		t.Fatalf("SetPassword() error = %v", err)
	}
	user.BeforeCreate()
	user.Status = authpkg.UserStatusActive
	return user
}
