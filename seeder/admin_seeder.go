package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"geo-attendance/models"
	"geo-attendance/pkg/password"
	"geo-attendance/repository"
)

// SeedAdmin creates the admin account from configuration when it does not
// exist yet. An empty email or password disables seeding.
func SeedAdmin(ctx context.Context, admins repository.AdminRepository, email, plain string, log *slog.Logger) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plain == "" {
		log.Warn("admin seeding skipped, ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	existing, err := admins.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up admin: %w", err)
	}
	if existing != nil {
		log.Info("admin already exists, seeding skipped", "email", email)
		return nil
	}

	hashed, err := password.HashPassword(plain)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	now := time.Now()
	admin := &models.Admin{Email: email, Password: hashed, CreatedAt: now, UpdatedAt: now}
	if err = admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}

	log.Info("admin seeded", "email", email)
	return nil
}
