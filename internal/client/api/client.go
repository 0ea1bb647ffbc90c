// Package api is the client's view of the backend: typed calls for the JSON
// routes plus raw blob transfers against presigned URLs.
package api

import (
	"context"
	"time"
)

// UploadSlot is an allocated upload destination returned by InitDocument.
type UploadSlot struct {
	DocumentID      string `json:"document_id"`
	StorageKey      string `json:"storage_key"`
	ThumbnailKey    string `json:"thumbnail_key"`
	PutURL          string `json:"put_url"`
	ThumbnailPutURL string `json:"thumbnail_put_url"`
}

// FinalizeRequest registers the document metadata once the ciphertexts are in
// place. ThumbnailKey is "" when the thumbnail upload failed.
type FinalizeRequest struct {
	DocumentID   string `json:"document_id"`
	FileName     string `json:"file_name"`
	MimeType     string `json:"mime_type"`
	StorageKey   string `json:"storage_key"`
	ThumbnailKey string `json:"thumbnail_key"`
}

// DocumentInfo is one owned document as listed by the server.
type DocumentInfo struct {
	ID           string    `json:"id"`
	FileName     string    `json:"file_name"`
	MimeType     string    `json:"mime_type"`
	ThumbnailKey string    `json:"thumbnail_key"`
	CreatedAt    time.Time `json:"created_at"`
}

// DocumentView pairs a document record with a presigned ciphertext URL.
type DocumentView struct {
	Document DocumentInfo `json:"document"`
	URL      string       `json:"url"`
}

// ShareGrant is what the owner receives after creating a share.
type ShareGrant struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	PIN       string    `json:"pin"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SharedDocument is the anonymous view of a shared document. OwnerID is the
// key-derivation input for decrypting the downloaded ciphertext.
type SharedDocument struct {
	OwnerID  string `json:"owner_id"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	URL      string `json:"url"`
}

type Client interface {
	Ping(ctx context.Context) error
	InitDocument(ctx context.Context) (*UploadSlot, error)
	FinalizeDocument(ctx context.Context, req *FinalizeRequest) error
	ListDocuments(ctx context.Context) ([]DocumentInfo, error)
	ViewDocument(ctx context.Context, documentID string) (*DocumentView, error)
	CreateShare(ctx context.Context, documentID string) (*ShareGrant, error)
	ValidateShare(ctx context.Context, token, pin string) (*SharedDocument, error)
	UploadBlob(ctx context.Context, url string, data []byte) error
	DownloadBlob(ctx context.Context, url string) ([]byte, error)
}
