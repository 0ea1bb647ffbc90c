// Package models defines the server-side persistence models.
package models

import "time"

// Document is the metadata record for one encrypted document. The record
// itself is not confidential: it carries storage paths and a MIME type, but
// never plaintext content or key material.
type Document struct {
	ID           string
	UserID       string
	FileName     string
	MimeType     string
	StorageKey   string // ciphertext location of the primary artifact
	ThumbnailKey string // ciphertext location of the thumbnail, may be ""
	CreatedAt    time.Time
}

// UploadSlot is an allocated destination for a new document: a fresh id,
// the storage keys, and presigned PUT URLs for both ciphertexts.
type UploadSlot struct {
	DocumentID      string
	StorageKey      string
	ThumbnailKey    string
	PutURL          string
	ThumbnailPutURL string
}
