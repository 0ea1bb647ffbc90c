package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/client/api"
	"github.com/dmitrijs2005/docvault/internal/cryptox"
	"github.com/dmitrijs2005/docvault/internal/logging"
)

// OpenedDocument is a decrypted document ready for display or saving.
type OpenedDocument struct {
	FileName string
	MimeType string
	Data     []byte
}

// DocService retrieves and decrypts documents, for the owner and for
// anonymous share recipients.
type DocService struct {
	client api.Client
	logger logging.Logger
	userID string
}

func NewDocService(client api.Client, logger logging.Logger, userID string) *DocService {
	return &DocService{
		client: client,
		logger: logger.With("module", "docs"),
		userID: userID,
	}
}

// List returns the owner's document records.
func (s *DocService) List(ctx context.Context) ([]api.DocumentInfo, error) {
	return s.client.ListDocuments(ctx)
}

// Share issues a share grant for an owned document. The returned PIN is
// shown once and never stored.
func (s *DocService) Share(ctx context.Context, documentID string) (*api.ShareGrant, error) {
	return s.client.CreateShare(ctx, documentID)
}

// ViewOwner downloads and decrypts one of the owner's documents. Any
// decryption failure surfaces as cryptox.ErrAuthenticationFailed with no
// further detail.
func (s *DocService) ViewOwner(ctx context.Context, documentID string) (*OpenedDocument, error) {
	view, err := s.client.ViewDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("view document: %w", err)
	}

	return s.fetchAndDecrypt(ctx, view.URL, s.userID, view.Document.FileName, view.Document.MimeType)
}

// ViewShared validates a share token and PIN, then downloads and decrypts
// the document with the key derived from the owner's identity.
func (s *DocService) ViewShared(ctx context.Context, token, pin string) (*OpenedDocument, error) {
	doc, err := s.client.ValidateShare(ctx, token, pin)
	if err != nil {
		return nil, err
	}

	return s.fetchAndDecrypt(ctx, doc.URL, doc.OwnerID, doc.FileName, doc.MimeType)
}

func (s *DocService) fetchAndDecrypt(ctx context.Context, url, identity, fileName, mimeType string) (*OpenedDocument, error) {
	ciphertext, err := s.client.DownloadBlob(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}

	plaintext, err := cryptox.Decrypt(cryptox.DeriveKey(identity), ciphertext)
	if err != nil {
		return nil, err
	}

	return &OpenedDocument{FileName: fileName, MimeType: mimeType, Data: plaintext}, nil
}
