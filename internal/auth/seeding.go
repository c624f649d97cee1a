package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/aquamarinepk/aqm"
	authpkg "github.com/aquamarinepk/aqm/auth"
	"github.com/aquamarinepk/aqm/seed"
	"go.mongodb.org/mongo-driver/mongo"
)

const authSeedApplication = "auth"

type mongoDatabaseProvider interface {
	Database() *mongo.Database
}

// ApplyAdminSeed ensures the bootstrap admin account exists. Email and
// password come from configuration so a fresh deployment can sign in.
func ApplyAdminSeed(ctx context.Context, repo UserRepo, config *aqm.Config, logger aqm.Logger) error {
	if repo == nil {
		return errors.New("user repository is required")
	}
	if config == nil {
		return errors.New("configuration is required")
	}

	email, _ := config.GetString("auth.admin.email")
	password, _ := config.GetString("auth.admin.password")
	if email == "" || password == "" {
		logger.Info("No bootstrap admin configured, skipping admin seed")
		return nil
	}

	provider, ok := repo.(mongoDatabaseProvider)
	if !ok {
		return errors.New("user repository does not expose MongoDB access for seeding")
	}
	db := provider.Database()
	if db == nil {
		return errors.New("user repository database is not initialized")
	}
	tracker := seed.NewMongoTracker(db)

	name := config.GetStringOrDef("auth.admin.name", "Administrator")

	seeds := []seed.Seed{
		{
			ID:          "2026-08-01_auth_bootstrap_admin",
			Description: "Ensure bootstrap admin account",
			Run: func(ctx context.Context) error {
				return ensureAdmin(ctx, repo, email, password, name, logger)
			},
		},
	}

	logger.Info("Applying admin seed")
	if err := seed.Apply(ctx, tracker, seeds, authSeedApplication); err != nil {
		return err
	}
	logger.Info("Admin seed applied successfully")
	return nil
}

func ensureAdmin(ctx context.Context, repo UserRepo, email, password, name string, logger aqm.Logger) error {
	normalized := authpkg.NormalizeEmail(email)

	existing, err := repo.GetByEmail(ctx, normalized)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("check existing admin: %w", err)
	}
	if existing != nil {
		logger.Info("Bootstrap admin already exists", "email", normalized)
		return nil
	}

	user := NewUser()
	user.Email = normalized
	user.Name = name
	if err := user.SetPassword(password); err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user.BeforeCreate()

	if err := repo.Create(ctx, user); err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}

	logger.Info("Bootstrap admin created", "email", normalized)
	return nil
}

// SeedingFunc returns a lifecycle OnStart function that applies the admin
// seed in the background.
func SeedingFunc(seedCtx context.Context, repo UserRepo, config *aqm.Config, logger aqm.Logger) func(ctx context.Context) error {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	return func(ctx context.Context) error {
		go func() {
			if err := ApplyAdminSeed(seedCtx, repo, config, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("Admin seed failed: %v", err)
			}
		}()
		return nil
	}
}
