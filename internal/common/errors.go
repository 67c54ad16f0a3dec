// Package common defines shared constants and sentinel errors used across
// client layers of MaintKeeper. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Auth errors.
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrSessionExpired         = fmt.Errorf("session expired: %w", ErrAuthenticationRequired)
	ErrInvalidCredentials     = errors.New("invalid credentials")

	// Remote errors.
	ErrRemoteRequestFailed  = errors.New("remote request failed")
	ErrUnavailable          = errors.New("remote store unavailable")
	ErrSecondaryWriteFailed = errors.New("secondary write failed")
	ErrEmptyResponse        = errors.New("no data returned")

	// Validation / entity-specific errors.
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrSKUExists  = fmt.Errorf("sku already exists: %w", ErrConflict)
)
