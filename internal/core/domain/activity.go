package domain

import "time"

// Action identifies the kind of document mutation an activity records.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Activity is an append-only audit record of a document mutation. The
// document title and user name are denormalised at write time so the feed
// stays readable after the document or user is gone.
type Activity struct {
	// ID is the unique identifier for the activity record.
	ID string

	// Action is create, update, or delete.
	Action Action

	// DocID references the affected document. It may dangle after the
	// document is deleted.
	DocID string

	// DocTitle is the document title at the time of the action.
	DocTitle string

	// UserID references the acting user.
	UserID string

	// UserName is the acting user's name at the time of the action.
	UserName string

	// CreatedAt is when the action happened.
	CreatedAt time.Time
}
