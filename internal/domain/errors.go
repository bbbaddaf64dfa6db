package domain

import "errors"

// Error message string constants - single source of truth for error messages.
// Use these in assert.Contains() checks when testing error messages.
const (
	ErrMsgValidation     = "invalid submission"
	ErrMsgNotAuthorized  = "not an administrator"
	ErrMsgNotFound       = "not found"
	ErrMsgMemberNotFound = "member not found"
	ErrMsgItemNotFound   = "item not found"
	ErrMsgRankNotFound   = "rank not found"
	ErrMsgPersistence    = "persistence failure"
	ErrMsgNotification   = "notification failure"
)

// Common domain errors.
// Wrap with fmt.Errorf("%w: %s", domain.ErrXxx, details) for context and
// test with errors.Is across layers.
var (
	// ErrValidation covers malformed or incomplete input: missing member,
	// no lines, empty activity, non-positive quantity. Raised before any
	// persistence I/O happens.
	ErrValidation = errors.New(ErrMsgValidation)

	// ErrNotAuthorized means an authenticated identity is not listed in the
	// admins table and attempted a mutating operation.
	ErrNotAuthorized = errors.New(ErrMsgNotAuthorized)

	ErrNotFound       = errors.New(ErrMsgNotFound)
	ErrMemberNotFound = errors.New(ErrMsgMemberNotFound)
	ErrItemNotFound   = errors.New(ErrMsgItemNotFound)
	ErrRankNotFound   = errors.New(ErrMsgRankNotFound)

	// ErrPersistence wraps storage failures. Fatal for the remaining steps
	// of a single submission, recoverable for read paths.
	ErrPersistence = errors.New(ErrMsgPersistence)

	// ErrNotification wraps webhook failures. Never fatal: the loot is
	// already granted, the error is recorded on the registry instead.
	ErrNotification = errors.New(ErrMsgNotification)
)
