package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// flight does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails a business
// rule (e.g. missing flight number, malformed departure date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrBusy is returned when a save is already in flight for the same form.
// Handlers should map this to HTTP 409 Conflict.
var ErrBusy = errors.New("save already in progress")
