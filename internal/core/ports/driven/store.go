package driven

import (
	"context"

	"github.com/custodia-labs/teamhub/internal/core/domain"
)

// DocumentFilter narrows and pages a document listing. A zero value lists
// everything.
type DocumentFilter struct {
	// Tag, when non-empty, restricts results to documents carrying it.
	Tag string

	// Page is 1-based. Values below 1 are treated as 1.
	Page int

	// Limit caps the page size. Zero or negative means no limit, which is
	// how corpus-wide retrieval loads every embedding.
	Limit int
}

// DocumentStore persists documents. Implementations must guarantee
// single-document write atomicity; no cross-document transaction is assumed
// by the services.
type DocumentStore interface {
	// SaveDocument stores or fully overwrites a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID, or domain.ErrNotFound.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns documents matching the filter, ordered by
	// UpdatedAt descending.
	ListDocuments(ctx context.Context, filter DocumentFilter) ([]domain.Document, error)

	// DeleteDocument hard-deletes a document. Versions and activities
	// referencing it are untouched. Unknown IDs return domain.ErrNotFound.
	DeleteDocument(ctx context.Context, id string) error
}

// VersionStore persists immutable pre-edit snapshots.
type VersionStore interface {
	// SaveVersion appends a snapshot. Versions are never updated.
	SaveVersion(ctx context.Context, v *domain.Version) error

	// ListVersions returns all versions of a document, newest first.
	// A document without versions yields an empty slice, not an error.
	ListVersions(ctx context.Context, docID string) ([]domain.Version, error)
}

// ActivityStore persists the append-only audit feed.
type ActivityStore interface {
	// Append records an activity entry.
	Append(ctx context.Context, a *domain.Activity) error

	// Latest returns the most recent n entries, newest first.
	Latest(ctx context.Context, n int) ([]domain.Activity, error)
}

// UserStore persists registered users.
type UserStore interface {
	// CreateUser stores a new user. A duplicate email returns
	// domain.ErrAlreadyExists.
	CreateUser(ctx context.Context, u *domain.User) error

	// GetUser retrieves a user by ID, or domain.ErrNotFound.
	GetUser(ctx context.Context, id string) (*domain.User, error)

	// GetUserByEmail retrieves a user by email, or domain.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}
