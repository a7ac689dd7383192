package websocket

import (
	"fmt"

	"notesaides-api/internal/domain"
)

type MessageType string

const (
	TypeNoteCreated MessageType = "NOTE_CREATED"
	TypeNoteUpdated MessageType = "NOTE_UPDATED"
	TypeNoteDeleted MessageType = "NOTE_DELETED"
)

// Message is the outbound notification pushed to clients. The user is
// implicit, every recipient already belongs to the affected user, so only
// the change kind and the note travel on the wire. Clients treat any
// notification as "refetch the affected resources".
type Message struct {
	Type   MessageType `json:"type"`
	NoteID string      `json:"noteId,omitempty"`
}

func MessageFromEvent(e domain.ChangeEvent) (*Message, error) {
	var msgType MessageType
	switch e.Type {
	case domain.ChangeCreated:
		msgType = TypeNoteCreated
	case domain.ChangeUpdated:
		msgType = TypeNoteUpdated
	case domain.ChangeDeleted:
		msgType = TypeNoteDeleted
	default:
		return nil, fmt.Errorf("unknown change type: %q", e.Type)
	}

	return &Message{
		Type:   msgType,
		NoteID: e.NoteID,
	}, nil
}
