// Package core defines the fundamental types and errors for prooflens.
package core

import "errors"

// Core errors that can occur across the system
var (
	// Pipeline errors
	ErrImageDecode     = errors.New("image could not be decoded")
	ErrEmptyImage      = errors.New("image has no pixels")
	ErrVerifyCancelled = errors.New("verification cancelled")

	// Lexical errors
	ErrTaggerUnavailable = errors.New("language tagger unavailable")

	// Storage errors
	ErrVerificationNotFound = errors.New("verification not found")
	ErrMigrationFailed      = errors.New("migration failed")

	// Validation errors
	ErrInvalidCategory = errors.New("invalid task category")
	ErrInvalidPriority = errors.New("invalid task priority")
	ErrMissingTitle    = errors.New("task title is required")
)
