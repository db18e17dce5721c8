package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors and are mapped to HTTP
// responses exactly once, at the request boundary.
var (
	// ErrNotFound indicates a requested entity does not exist. It is also
	// returned by corpus-wide question answering when no documents exist
	// to build a context from.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or missing input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden indicates the actor is neither the document owner nor
	// an admin and attempted a mutating operation.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists indicates an entity already exists, e.g. a
	// registration with an email that is already in use.
	ErrAlreadyExists = errors.New("already exists")

	// ErrServiceUnavailable indicates an upstream dependency, such as the
	// AI provider, failed or was unreachable.
	ErrServiceUnavailable = errors.New("service unavailable")
)
