// Package repository defines error types that are reused across
// multiple repositories.  These sentinel values allow higher layers
// such as handlers and the auth core to distinguish failure scenarios
// without depending on database/sql directly.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist.  The
// auth core treats a missing session row as a revoked token, and
// handlers translate it into 404 responses for domain resources.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, such as deleting a game another guest
// registered.  Handlers translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state.  Handlers translate this into an HTTP 409.
var ErrConflict = errors.New("conflict")
