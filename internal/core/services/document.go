package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/teamhub/internal/core/domain"
	"github.com/custodia-labs/teamhub/internal/core/ports/driven"
	"github.com/custodia-labs/teamhub/internal/core/ports/driving"
	"github.com/custodia-labs/teamhub/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// activityFeedSize is how many entries the latest-activity view returns.
const activityFeedSize = 5

// DocumentService manages documents, their version history, and the
// activity feed.
type DocumentService struct {
	docs       driven.DocumentStore
	versions   driven.VersionStore
	activities driven.ActivityStore
	users      driven.UserStore
	ai         driven.AIService
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	docs driven.DocumentStore,
	versions driven.VersionStore,
	activities driven.ActivityStore,
	users driven.UserStore,
	ai driven.AIService,
) *DocumentService {
	return &DocumentService{
		docs:       docs,
		versions:   versions,
		activities: activities,
		users:      users,
		ai:         ai,
	}
}

// Create validates the input, synchronously derives summary, tags, and
// embedding, persists the document, and records a create activity.
func (s *DocumentService) Create(
	ctx context.Context, actor domain.User, input driving.DocumentInput,
) (*driving.DocumentView, error) {
	if err := domain.ValidateDocumentInput(input.Title, input.Content); err != nil {
		return nil, err
	}

	summary, err := s.ai.Summarize(ctx, input.Content)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	tags, err := s.ai.GenerateTags(ctx, input.Content)
	if err != nil {
		return nil, fmt.Errorf("generate tags: %w", err)
	}

	now := time.Now().UTC()
	doc := domain.Document{
		ID:        uuid.NewString(),
		Title:     input.Title,
		Content:   input.Content,
		Summary:   summary,
		Tags:      tags,
		CreatedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	embedding, err := s.ai.Embed(ctx, doc.EmbeddingInput())
	if err != nil {
		return nil, fmt.Errorf("embed document: %w", err)
	}
	doc.Embedding = embedding

	if err := s.docs.SaveDocument(ctx, &doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	s.logActivity(ctx, domain.ActionCreate, doc, actor)
	logger.Info("document created", "id", doc.ID, "title", doc.Title)

	view := s.withCreator(ctx, doc)
	return &view, nil
}

// List returns documents matching the filter, most recently updated first.
func (s *DocumentService) List(
	ctx context.Context, filter driven.DocumentFilter,
) ([]driving.DocumentView, error) {
	docs, err := s.docs.ListDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	views := make([]driving.DocumentView, len(docs))
	for i, doc := range docs {
		views[i] = s.withCreator(ctx, doc)
	}
	return views, nil
}

// Get returns one document with creator details.
func (s *DocumentService) Get(ctx context.Context, id string) (*driving.DocumentView, error) {
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	view := s.withCreator(ctx, *doc)
	return &view, nil
}

// Update edits a document. The pre-edit state is snapshotted as a version
// whenever the request carries at least one of title, content, or tags,
// regardless of whether the values actually differ. The new embedding is
// obtained before anything is persisted, so an embedding failure leaves the
// stored document fully intact and its embedding never goes stale relative
// to committed content.
func (s *DocumentService) Update(
	ctx context.Context, actor domain.User, id string, update driving.DocumentUpdate,
) (*driving.DocumentView, error) {
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.EditableBy(actor) {
		return nil, fmt.Errorf("%w: only the author or an admin can edit", domain.ErrForbidden)
	}

	if err := domain.ValidateDocumentUpdate(update.Title, update.Content); err != nil {
		return nil, err
	}

	hasChanges := update.Title != nil || update.Content != nil || update.Tags != nil

	now := time.Now().UTC()
	var snapshot *domain.Version
	if hasChanges {
		v := domain.Snapshot(uuid.NewString(), *doc, actor.ID, now)
		snapshot = &v
	}

	updated := *doc
	if update.Title != nil {
		updated.Title = *update.Title
	}
	if update.Content != nil {
		updated.Content = *update.Content
	}
	if update.Tags != nil {
		updated.Tags = *update.Tags
	}
	updated.UpdatedAt = now

	embedding, err := s.ai.Embed(ctx, updated.EmbeddingInput())
	if err != nil {
		return nil, fmt.Errorf("re-embed document: %w", err)
	}
	updated.Embedding = embedding

	if snapshot != nil {
		if err := s.versions.SaveVersion(ctx, snapshot); err != nil {
			return nil, fmt.Errorf("save version: %w", err)
		}
	}
	if err := s.docs.SaveDocument(ctx, &updated); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	s.logActivity(ctx, domain.ActionUpdate, updated, actor)
	logger.Info("document updated", "id", updated.ID, "versioned", hasChanges)

	view := s.withCreator(ctx, updated)
	return &view, nil
}

// Delete hard-deletes a document and records a delete activity. Existing
// versions and activity entries are intentionally retained as audit records
// keyed by the now-dangling document ID.
func (s *DocumentService) Delete(ctx context.Context, actor domain.User, id string) error {
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if !doc.EditableBy(actor) {
		return fmt.Errorf("%w: only the author or an admin can delete", domain.ErrForbidden)
	}

	if err := s.docs.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	s.logActivity(ctx, domain.ActionDelete, *doc, actor)
	logger.Info("document deleted", "id", id)
	return nil
}

// RegenerateSummary rewrites only the summary. No version is recorded and
// the embedding is untouched, since it derives from title and content only.
func (s *DocumentService) RegenerateSummary(
	ctx context.Context, actor domain.User, id string,
) (string, error) {
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return "", err
	}
	if !doc.EditableBy(actor) {
		return "", fmt.Errorf("%w: only the author or an admin can edit", domain.ErrForbidden)
	}

	summary, err := s.ai.Summarize(ctx, doc.Content)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	doc.Summary = summary
	doc.UpdatedAt = time.Now().UTC()
	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		return "", fmt.Errorf("save document: %w", err)
	}
	return summary, nil
}

// RegenerateTags rewrites only the tags.
func (s *DocumentService) RegenerateTags(
	ctx context.Context, actor domain.User, id string,
) ([]string, error) {
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.EditableBy(actor) {
		return nil, fmt.Errorf("%w: only the author or an admin can edit", domain.ErrForbidden)
	}

	tags, err := s.ai.GenerateTags(ctx, doc.Content)
	if err != nil {
		return nil, fmt.Errorf("generate tags: %w", err)
	}

	doc.Tags = tags
	doc.UpdatedAt = time.Now().UTC()
	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return tags, nil
}

// Versions returns the edit history, newest first. Histories of deleted
// documents remain retrievable.
func (s *DocumentService) Versions(ctx context.Context, docID string) ([]domain.Version, error) {
	versions, err := s.versions.ListVersions(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return versions, nil
}

// LatestActivity returns the five most recent activity entries.
func (s *DocumentService) LatestActivity(ctx context.Context) ([]domain.Activity, error) {
	items, err := s.activities.Latest(ctx, activityFeedSize)
	if err != nil {
		return nil, fmt.Errorf("latest activity: %w", err)
	}
	return items, nil
}

// logActivity appends an audit entry. A failed append does not fail the
// request that caused it; the mutation already happened.
func (s *DocumentService) logActivity(
	ctx context.Context, action domain.Action, doc domain.Document, actor domain.User,
) {
	a := domain.Activity{
		ID:        uuid.NewString(),
		Action:    action,
		DocID:     doc.ID,
		DocTitle:  doc.Title,
		UserID:    actor.ID,
		UserName:  actor.Name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.activities.Append(ctx, &a); err != nil {
		logger.Warn("activity append failed", "action", string(action), "doc", doc.ID, "err", err)
	}
}

// withCreator joins the document with its creator's public details.
func (s *DocumentService) withCreator(ctx context.Context, doc domain.Document) driving.DocumentView {
	view := driving.DocumentView{Document: doc}
	if s.users == nil {
		return view
	}
	creator, err := s.users.GetUser(ctx, doc.CreatedBy)
	if err != nil {
		return view
	}
	view.CreatorName = creator.Name
	view.CreatorRole = creator.Role
	return view
}
