package driving

import (
	"context"

	"github.com/custodia-labs/teamhub/internal/core/domain"
)

// Registration carries a registration request. Role is optional and
// defaults to user.
type Registration struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// Session is an issued bearer token together with the authenticated user.
type Session struct {
	Token string
	User  domain.User
}

// AuthService registers users, issues bearer tokens, and resolves tokens
// back to users for the request middleware.
type AuthService interface {
	// Register validates and stores a new user with a hashed password.
	Register(ctx context.Context, reg Registration) (*domain.User, error)

	// Login verifies credentials and issues a signed token.
	Login(ctx context.Context, email, password string) (*Session, error)

	// Authenticate resolves a bearer token to its user, or
	// domain.ErrUnauthorized.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
