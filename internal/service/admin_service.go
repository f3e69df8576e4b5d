package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"lifewood/internal/cache"
	"lifewood/internal/middleware"
	"lifewood/internal/models"
	"lifewood/internal/observability"
	"lifewood/internal/repository"
	"lifewood/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Token issuer and audience.
const (
	TokenIssuer   = "lifewood-api"
	TokenAudience = "lifewood-admin"
)

// AdminClaims are the JWT claims carried by an admin token.
type AdminClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AdminID parses the subject claim.
func (c *AdminClaims) AdminID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid admin id in token: %w", err)
	}
	return uint(id), nil
}

// TokenRevoker records logged-out tokens.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisRevoker stores revocations through the cache package.
type RedisRevoker struct{}

// Revoke implements TokenRevoker.
func (RedisRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return cache.RevokeToken(ctx, jti, ttl)
}

// IsRevoked implements TokenRevoker.
func (RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return cache.IsTokenRevoked(ctx, jti)
}

// AdminService authenticates dashboard admins and manages their accounts.
type AdminService struct {
	repo     repository.AdminRepository
	secret   []byte
	ttl      time.Duration
	revoker  TokenRevoker
	hashCost int
	now      func() time.Time
}

// NewAdminService returns an AdminService signing tokens with secret.
func NewAdminService(repo repository.AdminRepository, secret string, ttl time.Duration, revoker TokenRevoker) *AdminService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if revoker == nil {
		revoker = RedisRevoker{}
	}
	return &AdminService{
		repo:     repo,
		secret:   []byte(secret),
		ttl:      ttl,
		revoker:  revoker,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// Login checks credentials. Bad credentials are not an error: the response
// has Success false and the invalid-credentials message.
func (s *AdminService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	ctx, span := observability.StartSpan(ctx, "service", "admin.login")
	defer span.End()

	invalid := &models.AuthResponse{Message: validation.MsgInvalidCredentials, Success: false}

	admin, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		observability.AdminLogins.WithLabelValues("error").Inc()
		return nil, err
	}
	if admin == nil {
		observability.AdminLogins.WithLabelValues("failure").Inc()
		return invalid, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		observability.AdminLogins.WithLabelValues("failure").Inc()
		return invalid, nil
	}

	token, err := s.IssueToken(admin)
	if err != nil {
		observability.AdminLogins.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(err)
	}
	observability.AdminLogins.WithLabelValues("success").Inc()
	middleware.Logger.InfoContext(ctx, "admin logged in", slog.Uint64("admin_id", uint64(admin.ID)))

	return &models.AuthResponse{
		Message: validation.MsgLoginSuccessful,
		Success: true,
		Token:   token,
		Admin:   admin,
	}, nil
}

// IssueToken signs a token for admin.
func (s *AdminService) IssueToken(admin *models.Admin) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("JWT secret not configured")
	}
	now := s.now()
	claims := AdminClaims{
		Email: admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(admin.ID), 10),
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken verifies signature, issuer, audience, expiry and revocation.
func (s *AdminService) ParseToken(ctx context.Context, raw string) (*AdminClaims, error) {
	invalid := models.NewUnauthorizedError(validation.MsgInvalidToken)
	if strings.TrimSpace(raw) == "" {
		return nil, invalid
	}

	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, invalid
	}
	if _, err := claims.AdminID(); err != nil {
		return nil, invalid
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "token revocation lookup failed", slog.String("error", err.Error()))
	}
	if revoked {
		return nil, invalid
	}
	return claims, nil
}

// Logout revokes the token for the rest of its lifetime. Without Redis the
// token simply expires on its own.
func (s *AdminService) Logout(ctx context.Context, claims *AdminClaims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	err := s.revoker.Revoke(ctx, claims.ID, ttl)
	if errors.Is(err, cache.ErrNoClient) {
		middleware.Logger.WarnContext(ctx, "logout without redis, token stays valid until expiry")
		return nil
	}
	return err
}

// CreateAdmin adds an admin account after checking the password policy.
func (s *AdminService) CreateAdmin(ctx context.Context, email, password, firstName, lastName string) (*models.Admin, error) {
	email = strings.TrimSpace(email)
	if msg := validation.Email(email); msg != "" {
		return nil, models.NewValidationError(msg)
	}
	if err := validation.AdminPassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Admin with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	admin := &models.Admin{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// ChangePassword replaces the password of the admin with email.
func (s *AdminService) ChangePassword(ctx context.Context, email, password string) error {
	if err := validation.AdminPassword(password); err != nil {
		return models.NewValidationError(err.Error())
	}
	admin, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}
	if admin == nil {
		return models.NewNotFoundError("Admin", email)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.repo.UpdatePassword(ctx, admin.ID, string(hash))
}

// ListAdmins returns every admin account.
func (s *AdminService) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	return s.repo.List(ctx)
}

// GetAdmin loads one admin by id.
func (s *AdminService) GetAdmin(ctx context.Context, id uint) (*models.Admin, error) {
	return s.repo.GetByID(ctx, id)
}
