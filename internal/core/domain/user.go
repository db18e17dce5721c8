package domain

import "time"

// Role controls what a user may do with documents they do not own.
type Role string

const (
	// RoleUser may only edit and delete their own documents.
	RoleUser Role = "user"

	// RoleAdmin bypasses ownership checks on every mutating operation.
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is a registered member of the team.
type User struct {
	// ID is the unique identifier for the user.
	ID string

	// Name is the display name shown in activity entries and document
	// creator fields.
	Name string

	// Email is unique across users and used for login.
	Email string

	// PasswordHash is the bcrypt hash of the user's password. It is never
	// serialised in API responses.
	PasswordHash string

	// Role is either "user" or "admin".
	Role Role

	// CreatedAt is when the user registered.
	CreatedAt time.Time
}
