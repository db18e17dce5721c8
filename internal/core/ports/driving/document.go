package driving

import (
	"context"

	"github.com/custodia-labs/teamhub/internal/core/domain"
	"github.com/custodia-labs/teamhub/internal/core/ports/driven"
)

// DocumentInput carries the author-supplied fields of a create request.
// Summary, tags, and embedding are derived, never supplied.
type DocumentInput struct {
	Title   string
	Content string
}

// DocumentUpdate carries an edit request. Nil pointers mean the field was
// absent from the body; presence of any field triggers a version snapshot
// even when the new value equals the old one.
type DocumentUpdate struct {
	Title   *string
	Content *string
	Tags    *[]string
}

// DocumentView is a document enriched with its creator's public details
// for API responses.
type DocumentView struct {
	domain.Document

	// CreatorName and CreatorRole describe the owning user. Empty when
	// the user record no longer exists.
	CreatorName string
	CreatorRole domain.Role
}

// DocumentService manages the document lifecycle: creation with synchronous
// AI enrichment, snapshot-then-overwrite edits, isolated regeneration of
// derived fields, deletion, version history, and the activity feed.
type DocumentService interface {
	// Create validates the input, derives summary, tags, and embedding,
	// persists the document, and records a create activity.
	Create(ctx context.Context, actor domain.User, input DocumentInput) (*DocumentView, error)

	// List returns documents matching the filter, most recently updated
	// first, with creator details.
	List(ctx context.Context, filter driven.DocumentFilter) ([]DocumentView, error)

	// Get returns one document with creator details.
	Get(ctx context.Context, id string) (*DocumentView, error)

	// Update snapshots the pre-edit state, applies the present fields,
	// re-embeds from the resulting title and content, persists, and
	// records an update activity. Only the owner or an admin may edit.
	Update(ctx context.Context, actor domain.User, id string, update DocumentUpdate) (*DocumentView, error)

	// Delete hard-deletes the document and records a delete activity.
	// Versions and activities are retained as audit records.
	Delete(ctx context.Context, actor domain.User, id string) error

	// RegenerateSummary rewrites only the summary from current content.
	// Title, content, tags, embedding, and version history are untouched.
	RegenerateSummary(ctx context.Context, actor domain.User, id string) (string, error)

	// RegenerateTags rewrites only the tags from current content.
	RegenerateTags(ctx context.Context, actor domain.User, id string) ([]string, error)

	// Versions returns the document's edit history, newest first.
	Versions(ctx context.Context, docID string) ([]domain.Version, error)

	// LatestActivity returns the most recent activity entries, newest
	// first.
	LatestActivity(ctx context.Context) ([]domain.Activity, error)
}
