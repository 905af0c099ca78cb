// Package core defines the fundamental types and errors for Prody.
package core

import "errors"

// Core errors that can occur across the system
var (
	// AI errors
	ErrAPIKeyNotConfigured = errors.New("API key not configured")
	ErrEmptyResponse       = errors.New("empty response from AI")

	// Storage errors
	ErrRecordNotFound  = errors.New("record not found")
	ErrMigrationFailed = errors.New("migration failed")

	// Letter errors
	ErrLetterNotFound     = errors.New("letter not found")
	ErrLetterNotDelivered = errors.New("letter has not been delivered yet")

	// Journal errors
	ErrEntryNotFound = errors.New("journal entry not found")

	// Vocabulary errors
	ErrWordNotFound = errors.New("word not found")

	// Validation errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingRequired = errors.New("missing required field")
)
