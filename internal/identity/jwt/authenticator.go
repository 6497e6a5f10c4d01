// Package jwt issues and verifies HS256 access tokens.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/bissquit/hotel-booking/internal/identity"
	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest accepted signing secret.
const MinSecretLength = 32

// Config contains JWT settings.
type Config struct {
	Secret   string
	TokenTTL time.Duration
	Issuer   string
}

type claims struct {
	jwt.RegisteredClaims
	Role  domain.Role `json:"role"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
}

// Authenticator implements identity.Authenticator.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewAuthenticator creates an authenticator.
func NewAuthenticator(cfg Config) (*Authenticator, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}

	return &Authenticator{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TokenTTL,
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

// GenerateToken signs an access token for user.
func (a *Authenticator) GenerateToken(_ context.Context, user *domain.User) (string, error) {
	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
		Role:  user.Role,
		Email: user.Email,
		Name:  user.DisplayName,
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature and expiry and returns the token identity.
func (a *Authenticator) ValidateToken(_ context.Context, raw string) (domain.Identity, error) {
	var c claims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, fmt.Errorf("%w: token expired", identity.ErrInvalidToken)
		}
		return domain.Identity{}, identity.ErrInvalidToken
	}

	if c.Subject == "" || !c.Role.IsValid() {
		return domain.Identity{}, identity.ErrInvalidToken
	}

	return domain.Identity{
		ID:          c.Subject,
		DisplayName: c.Name,
		Email:       c.Email,
		Role:        c.Role,
	}, nil
}
