package service

import "errors"

// Failure taxonomy shared by the service layer. Handlers map these to
// transport status codes; callers match with errors.Is.
var (
	// ErrInvalidInput marks caller errors: malformed or missing
	// fields. Not retryable.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized marks an invalid, revoked, or suspended key on
	// the ingestion path.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden marks an ownership mismatch on an owner-authorized
	// mutation.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound marks a missing site.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a uniqueness violation; the caller must pick a
	// different value or fetch the existing record.
	ErrConflict = errors.New("conflict")

	// ErrTransient marks storage unavailability. Safe to retry with
	// backoff; never conflated with caller error.
	ErrTransient = errors.New("transient failure")
)
