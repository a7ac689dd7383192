package repository

import "errors"

// ErrNotFound is returned when a document does not exist. Services map it
// to their own not-found errors so handlers never see storage details.
var ErrNotFound = errors.New("document not found")
