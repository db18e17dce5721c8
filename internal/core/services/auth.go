package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/custodia-labs/teamhub/internal/core/domain"
	"github.com/custodia-labs/teamhub/internal/core/ports/driven"
	"github.com/custodia-labs/teamhub/internal/core/ports/driving"
	"github.com/custodia-labs/teamhub/internal/logger"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// DefaultTokenTTL is how long issued tokens stay valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

// AuthService registers users and issues HMAC-signed bearer tokens.
type AuthService struct {
	users    driven.UserStore
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthService creates a new auth service. A zero tokenTTL falls back to
// DefaultTokenTTL.
func NewAuthService(users driven.UserStore, secret []byte, tokenTTL time.Duration) *AuthService {
	if tokenTTL == 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &AuthService{users: users, secret: secret, tokenTTL: tokenTTL}
}

// Register validates and stores a new user. The password is bcrypt-hashed
// and never leaves this method in the clear.
func (s *AuthService) Register(ctx context.Context, reg driving.Registration) (*domain.User, error) {
	if err := domain.ValidateRegistration(reg.Name, reg.Email, reg.Password, reg.Role); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(reg.Email))
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already in use", domain.ErrAlreadyExists)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := reg.Role
	if role == "" {
		role = domain.RoleUser
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(reg.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info("user registered", "id", user.ID, "role", string(user.Role))
	return &user, nil
}

// Login verifies credentials and issues a signed token carrying the user ID
// and role. Unknown emails and wrong passwords are indistinguishable to the
// caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*driving.Session, error) {
	if err := domain.ValidateLogin(email, password); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &driving.Session{Token: token, User: *user}, nil
}

// Authenticate resolves a bearer token to its user. Any parse, signature,
// expiry, or lookup failure yields domain.ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}

	user, err := s.users.GetUser(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("%w: user not found", domain.ErrUnauthorized)
	}
	return user, nil
}
