// Package identity provides user registration, authentication and account
// administration.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/bissquit/hotel-booking/internal/pkg/ctxlog"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// Service implements identity business logic.
type Service struct {
	repo Repository
	auth Authenticator
}

// NewService creates a new identity service.
func NewService(repo Repository, auth Authenticator) *Service {
	return &Service{
		repo: repo,
		auth: auth,
	}
}

// RegisterInput holds data for registering a user.
type RegisterInput struct {
	DisplayName string
	Email       string
	PhoneNumber string
	Password    string
}

// LoginInput holds login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// Register creates a new user with the USER role.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	return s.createUser(ctx, input, domain.RoleUser)
}

func (s *Service) createUser(ctx context.Context, input RegisterInput, role domain.Role) (*domain.User, error) {
	email := normalizeEmail(input.Email)
	if len(input.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	_, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName, _, _ = strings.Cut(email, "@")
	}

	user := &domain.User{
		DisplayName:  displayName,
		Email:        email,
		PhoneNumber:  strings.TrimSpace(input.PhoneNumber),
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	ctxlog.FromContext(ctx).Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, input LoginInput) (*domain.User, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.auth.GenerateToken(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	ctxlog.FromContext(ctx).Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// ValidateToken resolves an access token to the identity it was issued for.
func (s *Service) ValidateToken(ctx context.Context, token string) (domain.Identity, error) {
	return s.auth.ValidateToken(ctx, token)
}

// GetUserByID retrieves a user by ID.
func (s *Service) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// ListUsers returns every user. Admin only.
func (s *Service) ListUsers(ctx context.Context, requester domain.Identity) ([]domain.User, error) {
	if !requester.IsAdmin() {
		return nil, ErrAdminOnly
	}
	return s.repo.ListUsers(ctx)
}

// DeleteUser removes a user account and, through the storage layer, the
// user's bookings. Admin only.
func (s *Service) DeleteUser(ctx context.Context, id string, requester domain.Identity) error {
	if !requester.IsAdmin() {
		return ErrAdminOnly
	}
	if id == requester.ID {
		return ErrCannotDeleteSelf
	}

	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}

	ctxlog.FromContext(ctx).Info("user deleted", "user_id", id, "deleted_by", requester.ID)
	return nil
}

// EnsureAdmin makes sure an ADMIN account exists for email. An existing user
// with that email is promoted; otherwise a new admin is created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		return s.createUser(ctx, RegisterInput{Email: email, Password: password, DisplayName: "Administrator"}, domain.RoleAdmin)
	}
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}

	if user.Role == domain.RoleAdmin {
		return user, nil
	}

	user.Role = domain.RoleAdmin
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("promote admin: %w", err)
	}

	ctxlog.FromContext(ctx).Info("user promoted to admin", "user_id", user.ID)
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
