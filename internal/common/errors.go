// Package common defines shared constants and sentinel errors used across
// client and server layers of docvault. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidShare covers every share-validation failure: unknown token,
	// expired grant, or PIN mismatch. The causes are deliberately not
	// distinguishable from the error value.
	ErrInvalidShare = errors.New("invalid share")

	// Upload pipeline errors. Normalization and the primary-artifact write
	// are fatal to the whole upload; the thumbnail write is not.
	ErrNormalization   = errors.New("normalization failed")
	ErrEncryption      = errors.New("encryption failed")
	ErrPrimaryUpload   = errors.New("primary upload failed")
	ErrThumbnailUpload = errors.New("thumbnail upload failed")
	ErrMetadataPersist = errors.New("metadata persist failed")
)
