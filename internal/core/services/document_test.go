package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/teamhub/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/teamhub/internal/core/domain"
	"github.com/custodia-labs/teamhub/internal/core/ports/driving"
)

// --- Shared test fakes ---

// stubAI implements driven.AIService with canned responses. The zero value
// returns fixed derived fields; set the err fields to simulate provider
// failures.
type stubAI struct {
	summary   string
	tags      []string
	embedding []float32
	answer    string

	embedErr     error
	summarizeErr error
	tagsErr      error
	answerErr    error

	// lastContext captures the context handed to Answer.
	lastContext  string
	lastQuestion string
	embedCalls   int
}

func (a *stubAI) Embed(_ context.Context, _ string) ([]float32, error) {
	a.embedCalls++
	if a.embedErr != nil {
		return nil, a.embedErr
	}
	if a.embedding == nil {
		return []float32{1, 0}, nil
	}
	return a.embedding, nil
}

func (a *stubAI) Summarize(_ context.Context, _ string) (string, error) {
	if a.summarizeErr != nil {
		return "", a.summarizeErr
	}
	if a.summary == "" {
		return "a summary", nil
	}
	return a.summary, nil
}

func (a *stubAI) GenerateTags(_ context.Context, _ string) ([]string, error) {
	if a.tagsErr != nil {
		return nil, a.tagsErr
	}
	if a.tags == nil {
		return []string{"general"}, nil
	}
	return a.tags, nil
}

func (a *stubAI) Answer(_ context.Context, question, context string) (string, error) {
	a.lastQuestion = question
	a.lastContext = context
	if a.answerErr != nil {
		return "", a.answerErr
	}
	if a.answer == "" {
		return "an answer", nil
	}
	return a.answer, nil
}

var (
	owner = domain.User{ID: "u-owner", Name: "Olive Owner", Role: domain.RoleUser}
	other = domain.User{ID: "u-other", Name: "Oscar Other", Role: domain.RoleUser}
	admin = domain.User{ID: "u-admin", Name: "Ada Admin", Role: domain.RoleAdmin}
)

func newDocumentService(ai *stubAI) (*DocumentService, *memory.Store) {
	store := memory.NewStore()
	return NewDocumentService(store, store, store, store, ai), store
}

func strp(s string) *string { return &s }

// --- Tests ---

func TestDocumentServiceCreate(t *testing.T) {
	ai := &stubAI{summary: "How we deploy.", tags: []string{"ops", "deploy"}, embedding: []float32{0.1, 0.9}}
	svc, _ := newDocumentService(ai)

	view, err := svc.Create(context.Background(), owner, driving.DocumentInput{
		Title:   "Deploy Runbook",
		Content: "Push the button.",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, view.ID)
	assert.Equal(t, "Deploy Runbook", view.Title)
	assert.Equal(t, "How we deploy.", view.Summary)
	assert.Equal(t, []string{"ops", "deploy"}, view.Tags)
	assert.Equal(t, []float32{0.1, 0.9}, view.Embedding)
	assert.Equal(t, owner.ID, view.CreatedBy)
	assert.False(t, view.CreatedAt.IsZero())

	// Creation is logged but never versioned.
	versions, err := svc.Versions(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Empty(t, versions)

	activity, err := svc.LatestActivity(context.Background())
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.Equal(t, domain.ActionCreate, activity[0].Action)
	assert.Equal(t, "Deploy Runbook", activity[0].DocTitle)
	assert.Equal(t, owner.Name, activity[0].UserName)
}

func TestDocumentServiceCreateValidation(t *testing.T) {
	svc, _ := newDocumentService(&stubAI{})

	_, err := svc.Create(context.Background(), owner, driving.DocumentInput{
		Title:   "bad/title!",
		Content: "",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}

func TestDocumentServiceUpdateRecordsVersion(t *testing.T) {
	ai := &stubAI{summary: "old summary", tags: []string{"old"}}
	svc, _ := newDocumentService(ai)

	view, err := svc.Create(context.Background(), owner, driving.DocumentInput{
		Title:   "Original Title",
		Content: "original content",
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), owner, view.ID, driving.DocumentUpdate{
		Title:   strp("New Title"),
		Content: strp("new content"),
	})
	require.NoError(t, err)

	versions, err := svc.Versions(context.Background(), view.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)

	// The snapshot captures the pre-edit state.
	v := versions[0]
	assert.Equal(t, "Original Title", v.Title)
	assert.Equal(t, "original content", v.Content)
	assert.Equal(t, []string{"old"}, v.Tags)
	assert.Equal(t, "old summary", v.Summary)
	assert.Equal(t, owner.ID, v.EditedBy)

	updated, err := svc.Get(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Title", updated.Title)
	assert.Equal(t, "new content", updated.Content)
}

func TestDocumentServiceUpdateVersionPerEdit(t *testing.T) {
	svc, _ := newDocumentService(&stubAI{})

	view, err := svc.Create(context.Background(), owner, driving.DocumentInput{
		Title: "Doc", Content: "content",
	})
	require.NoError(t, err)

	// A snapshot happens on any present field, even a byte-identical value.
	for i := 0; i < 3; i++ {
		_, err = svc.Update(context.Background(), owner, view.ID, driving.DocumentUpdate{
			Title: strp("Doc"),
		})
		require.NoError(t, err)
	}

	versions, err := svc.Versions(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 3)
}

func TestDocumentServiceUpdateForbidden(t *testing.T) {
	svc, _ := newDocumentService(&stubAI{})

	view, err := svc.Create(context.Background(), owner, driving.DocumentInput{
		Title: "Doc", Content: "content",
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), other, view.ID, driving.DocumentUpdate{
		Title: strp("Hijacked"),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Nothing changed, nothing versioned.
	doc, err := svc.Get(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, "Doc", doc.Title)

	versions, err := svc.Versions(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestDocumentServiceUpdateByAdmin(t *testing.T) {
	svc, _ := newDocumentService(&stubAI{})

	view, err := svc.Create(context.Background(), owner, driving.DocumentInput{
		Title: "Doc", Content: "content",
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), admin, view.ID, driving.DocumentUpdate{
		Title: strp("Admin Edit"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Admin Edit", updated.Title)
}

func TestDocumentServiceUpdateEmbedFailureLeavesDocumentIntact(t *testing.T) {
	ai := &stubAI{}
	svc, _ := newDocumentService(ai)

	view, err := svc.Create(context.Background(), owner, driving.DocumentInput{
		Title: "Doc", Content: "content",
	})
	require.NoError(t, err)

	ai.embedErr = assert.AnError
	_, err = svc.Update(context.Background(), owner, view.ID, driving.DocumentUpdate{
		Content: strp("new content"),
	})
	require.Error(t, err)

	// The embedding call happens before anything is persisted, so the
	// stored document and its version history are untouched.
	doc, err := svc.Get(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, "content", doc.Content)

	versions, err := svc.Versions(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestDocumentServiceRegenerateSummary(t *testing.T) {
	ai := &stubAI{summary: "first summary", tags: []string{"a"}}
	svc, _ := newDocumentService(ai)

	view, err := svc.Create(context.Background(), owner, driving.DocumentInput{
		Title: "Doc", Content: "content",
	})
	require.NoError(t, err)

	ai.summary = "second summary"
	summary, err := svc.RegenerateSummary(context.Background(), owner, view.ID)
	require.NoError(t, err)
	assert.Equal(t, "second summary", summary)

	// Only the summary changed; tags and history are untouched.
	doc, err := svc.Get(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, "second summary", doc.Summary)
	assert.Equal(t, []string{"a"}, doc.Tags)
	assert.Equal(t, "content", doc.Content)

	versions, err := svc.Versions(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestDocumentServiceRegenerateTags(t *testing.T) {
	ai := &stubAI{summary: "summary", tags: []string{"old"}}
	svc, _ := newDocumentService(ai)

	view, err := svc.Create(context.Background(), owner, driving.DocumentInput{
		Title: "Doc", Content: "content",
	})
	require.NoError(t, err)

	ai.tags = []string{"fresh", "tags"}
	tags, err := svc.RegenerateTags(context.Background(), owner, view.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh", "tags"}, tags)

	doc, err := svc.Get(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, "summary", doc.Summary)
	assert.Equal(t, []string{"fresh", "tags"}, doc.Tags)
}

func TestDocumentServiceDeleteRetainsHistory(t *testing.T) {
	svc, _ := newDocumentService(&stubAI{})

	view, err := svc.Create(context.Background(), owner, driving.DocumentInput{
		Title: "Doc", Content: "content",
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), owner, view.ID, driving.DocumentUpdate{
		Title: strp("Edited"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), owner, view.ID))

	_, err = svc.Get(context.Background(), view.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Versions survive the delete as audit records.
	versions, err := svc.Versions(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestDocumentServiceDeleteForbidden(t *testing.T) {
	svc, _ := newDocumentService(&stubAI{})

	view, err := svc.Create(context.Background(), owner, driving.DocumentInput{
		Title: "Doc", Content: "content",
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), other, view.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Get(context.Background(), view.ID)
	assert.NoError(t, err)
}

func TestDocumentServiceLatestActivityCapped(t *testing.T) {
	svc, _ := newDocumentService(&stubAI{})

	view, err := svc.Create(context.Background(), owner, driving.DocumentInput{
		Title: "Doc", Content: "content",
	})
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		_, err = svc.Update(context.Background(), owner, view.ID, driving.DocumentUpdate{
			Title: strp("Doc"),
		})
		require.NoError(t, err)
	}

	activity, err := svc.LatestActivity(context.Background())
	require.NoError(t, err)
	assert.Len(t, activity, 5)
	for _, a := range activity {
		assert.Equal(t, domain.ActionUpdate, a.Action)
	}
}

func TestDocumentServiceGetNotFound(t *testing.T) {
	svc, _ := newDocumentService(&stubAI{})

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
