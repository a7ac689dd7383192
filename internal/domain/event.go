package domain

// ChangeType identifies the mutation a ChangeEvent describes.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// ChangeEvent is emitted after a note mutation has been persisted. It is
// consumed by the websocket fan-out and never stored. NoteID may be empty
// for bulk invalidations.
type ChangeEvent struct {
	UserID string
	Type   ChangeType
	NoteID string
}
