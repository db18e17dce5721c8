package domain

import "time"

// Version is an immutable snapshot of a document's mutable fields as they
// stood before an edit. Versions are never mutated or deleted; they outlive
// the document they describe so the audit trail survives a hard delete.
type Version struct {
	// ID is the unique identifier for the version record.
	ID string

	// DocID references the document this version snapshots. It may dangle
	// after the document is deleted.
	DocID string

	// Title, Content, Tags, and Summary capture the pre-edit state.
	Title   string
	Content string
	Tags    []string
	Summary string

	// EditedBy references the user whose edit triggered the snapshot.
	EditedBy string

	// EditedAt is when the edit happened.
	EditedAt time.Time
}

// Snapshot builds the version record for a document about to be edited.
// The fields are copied before any of the edit is applied.
func Snapshot(id string, doc Document, editorID string, now time.Time) Version {
	tags := make([]string, len(doc.Tags))
	copy(tags, doc.Tags)
	return Version{
		ID:       id,
		DocID:    doc.ID,
		Title:    doc.Title,
		Content:  doc.Content,
		Tags:     tags,
		Summary:  doc.Summary,
		EditedBy: editorID,
		EditedAt: now,
	}
}
