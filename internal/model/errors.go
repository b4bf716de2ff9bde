package model

import "errors"

// Failure taxonomy shared by the store, services, and HTTP handlers.
var (
	// ErrNotFound: a screen or media id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized: action attempted by someone other than the owner.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCode: pairing redemption found no matching unredeemed code.
	ErrInvalidCode = errors.New("invalid pairing code")
	// ErrWriteConflict: a conditional update lost a race with another writer.
	ErrWriteConflict = errors.New("write conflict")
)
