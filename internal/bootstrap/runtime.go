// Package bootstrap prepares the runtime shared by the server and the
// operator commands: database, Redis and the default admin account.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"lifewood/internal/cache"
	"lifewood/internal/config"
	"lifewood/internal/database"
	"lifewood/internal/middleware"
	"lifewood/internal/models"
	"lifewood/internal/repository"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Default admin profile.
const (
	DefaultAdminFirstName = "Lifewood"
	DefaultAdminLastName  = "Admin"
)

// Options control runtime initialization behavior.
type Options struct {
	EnsureDefaultAdmin bool
}

// InitRuntime connects to DB and Redis and optionally creates the default
// admin. Redis is optional: when it is unreachable the client is nil.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	r := cache.InitRedis(cfg.RedisURL)

	if opts.EnsureDefaultAdmin {
		if _, err := EnsureDefaultAdmin(context.Background(), cfg, repository.NewAdminRepository(db)); err != nil {
			return nil, nil, fmt.Errorf("failed to bootstrap default admin: %w", err)
		}
	}

	return db, r, nil
}

// EnsureDefaultAdmin creates the configured default admin when no account
// with that email exists. It reports whether an account was created. The
// password policy is not applied here so local setups keep working with the
// stock credentials; production config validation rejects those.
func EnsureDefaultAdmin(ctx context.Context, cfg *config.Config, repo repository.AdminRepository) (bool, error) {
	if cfg == nil || repo == nil {
		return false, nil
	}
	email := strings.TrimSpace(cfg.DefaultAdminEmail)
	if email == "" || cfg.DefaultAdminPassword == "" {
		return false, nil
	}

	existing, err := repo.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash default admin password: %w", err)
	}

	admin := &models.Admin{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    DefaultAdminFirstName,
		LastName:     DefaultAdminLastName,
	}
	if err := repo.Create(ctx, admin); err != nil {
		return false, err
	}

	middleware.Logger.InfoContext(ctx, "default admin created", slog.String("email", email))
	return true, nil
}
