// Package repository reads and writes the app's collections through a
// backend.DocumentStore. Every query is scoped to the signed-in provider.
package repository

import "errors"

// ErrForbidden is returned when a write names a provider other than the
// caller. Screens are always owned by the uid passed in, never by a value
// taken from the payload.
var ErrForbidden = errors.New("forbidden")

// ErrMissingUID guards against writes or queries without an owner.
var ErrMissingUID = errors.New("missing provider uid")
