package service

import "errors"

// ErrNoteNotFound covers both a missing note and a note owned by someone
// else. The two cases are deliberately indistinguishable so callers cannot
// probe for the existence of other users' notes.
var ErrNoteNotFound = errors.New("note not found")

var (
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidResetToken  = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
)
