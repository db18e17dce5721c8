package domain

import "time"

// Document is an authored knowledge-base entry. Summary, Tags, and Embedding
// are derived from the current title and content by the external AI provider
// and are regenerated whenever content changes.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Title is the human-readable title.
	Title string

	// Content is the full authored text.
	Content string

	// Summary is the AI-generated abstract. Empty until generated.
	Summary string

	// Tags are AI-generated lowercase labels. Order is not significant.
	Tags []string

	// Embedding is the vector representation of title and content,
	// produced by the external embedding model. It may be empty when
	// embedding failed; ranking then treats the document as a zero
	// vector.
	Embedding []float32

	// CreatedBy references the owning user.
	CreatedBy string

	// CreatedAt is when the document was created.
	CreatedAt time.Time

	// UpdatedAt is when the document was last modified.
	UpdatedAt time.Time
}

// EmbeddingInput returns the text the embedding vector is derived from.
// Keeping this in one place guarantees create and edit embed the same shape.
func (d Document) EmbeddingInput() string {
	return d.Title + "\n" + d.Content
}

// EditableBy reports whether the user may edit or delete this document:
// the original owner, or any admin.
func (d Document) EditableBy(u User) bool {
	return d.CreatedBy == u.ID || u.Role == RoleAdmin
}

// HasTag reports whether the document carries the given tag.
func (d Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
