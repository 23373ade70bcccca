package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queue-service/internal/auth"
	"github.com/spec-kit/queue-service/internal/config"
	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// RegisterInput describes a registration request.
type RegisterInput struct {
	Name     string
	Phone    string
	Password string
	Role     domain.Role
}

// Register creates a new user. Only admins may register users; a duplicate
// phone is a conflict and leaves the existing record untouched.
func (s *AuthService) Register(ctx context.Context, requester *domain.User, input RegisterInput) (*domain.User, error) {
	if !requester.IsAdmin() {
		return nil, apperrors.NewForbidden("only admin can register users")
	}

	if _, err := s.users.GetByPhone(ctx, input.Phone); err == nil {
		return nil, apperrors.NewConflict("phone already registered", map[string]any{"phone": input.Phone})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         input.Name,
		Phone:        input.Phone,
		Role:         input.Role,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates by phone and password and issues a token. An unknown
// phone and a wrong password are the same expected outcome, not a fault.
func (s *AuthService) Login(ctx context.Context, phone, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid phone or password")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid phone or password")
	}

	token, exp, err := s.tokenMgr.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// ListUsers returns all users; admin only.
func (s *AuthService) ListUsers(ctx context.Context, requester *domain.User) ([]domain.User, error) {
	if !requester.IsAdmin() {
		return nil, apperrors.NewForbidden("only admin can list users")
	}
	return s.users.List(ctx)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
