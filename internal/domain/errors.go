package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals a missing or malformed request field.
	ErrValidation = errors.New("validation failed")
	// ErrEncodingFailure signals that the embedding provider could not encode a text.
	ErrEncodingFailure = errors.New("encoding failure")
	// ErrCorpusMismatch signals that the embedding store is not aligned with the corpus
	// (length or dimension).
	ErrCorpusMismatch = errors.New("corpus mismatch")
	// ErrMetadataResolution signals that a title could not be resolved by the metadata service.
	ErrMetadataResolution = errors.New("metadata resolution failed")
	// ErrArtifactNotFound signals that no persisted embedding artifact exists yet.
	ErrArtifactNotFound = errors.New("embedding artifact not found")
	// ErrCatalogNotLoaded signals a request arriving before the catalog is installed.
	ErrCatalogNotLoaded = errors.New("catalog not loaded")
)

// MismatchError describes a length or dimension disagreement between two vector sources.
type MismatchError struct {
	What     string
	Expected int
	Got      int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s expected %d, got %d", ErrCorpusMismatch.Error(), e.What, e.Expected, e.Got)
}

func (e *MismatchError) Unwrap() error { return ErrCorpusMismatch }

// NewMismatch creates a corpus mismatch error.
func NewMismatch(what string, expected, got int) error {
	return &MismatchError{What: what, Expected: expected, Got: got}
}

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidation creates a validation error for a field.
func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
