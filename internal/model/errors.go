package model

import "errors"

// Common errors used across the application
var (
	// Remote API errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("service unavailable")

	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoActiveProfile  = errors.New("no active profile selected")
	ErrNoChanges        = errors.New("no changes to apply")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrCurrentPassword  = errors.New("the current password is required to set a new one")

	// Watchlist errors
	ErrAlreadyInWatchlist = errors.New("the game is already in the watchlist")
	ErrRestricted         = errors.New("this content is restricted for the active profile")
	ErrInvalidGameID      = errors.New("invalid game id")

	// Profile errors
	ErrDuplicateProfileName = errors.New("a profile with that name already exists")
)
