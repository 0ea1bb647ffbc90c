package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	sc "github.com/dmitrijs2005/docvault/internal/server/config"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docvault/internal/sharex"
)

// ShareService issues and validates anonymous share grants. Validation never
// reveals whether a token is absent, expired, or guarded by a different PIN:
// all failures collapse into common.ErrInvalidShare.
type ShareService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	docs        *DocumentService
	config      *sc.Config
}

func NewShareService(db *sql.DB, repomanager repomanager.RepositoryManager, docs *DocumentService, config *sc.Config) *ShareService {
	return &ShareService{
		db:          db,
		repomanager: repomanager,
		docs:        docs,
		config:      config,
	}
}

// Grant is what the owner receives after issuing a share: the link to hand
// out and the PIN to communicate out of band.
type Grant struct {
	Token     string
	URL       string
	PIN       string
	ExpiresAt time.Time
}

// Issue creates a share grant for a document owned by userID. The PIN is
// generated here, stored only as a bcrypt hash, and returned exactly once.
func (s *ShareService) Issue(ctx context.Context, documentID, userID string) (*Grant, error) {
	docRepo := s.repomanager.Documents(s.db)
	if _, err := docRepo.GetOwned(ctx, documentID, userID); err != nil {
		return nil, err
	}

	token := sharex.NewToken()
	pin, err := sharex.GeneratePIN()
	if err != nil {
		return nil, fmt.Errorf("error generating pin: %w", err)
	}
	hash, err := sharex.HashPIN(pin)
	if err != nil {
		return nil, fmt.Errorf("error hashing pin: %w", err)
	}

	share := &models.Share{
		Token:      token,
		DocumentID: documentID,
		PinHash:    hash,
		ExpiresAt:  time.Now().Add(s.config.ShareTTL),
	}

	if err := s.repomanager.Shares(s.db).Create(ctx, share); err != nil {
		return nil, fmt.Errorf("error creating share: %w", err)
	}

	return &Grant{
		Token:     token,
		URL:       fmt.Sprintf("%s/share/%s", s.config.ShareBaseURL, token),
		PIN:       pin,
		ExpiresAt: share.ExpiresAt,
	}, nil
}

// Validate checks a token and PIN pair and, on success, returns the document
// record plus a short-lived presigned GET URL for its ciphertext.
func (s *ShareService) Validate(ctx context.Context, token, pin string) (*models.Document, string, error) {
	share, err := s.repomanager.Shares(s.db).GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrInvalidShare
		}
		return nil, "", err
	}

	if time.Now().After(share.ExpiresAt) {
		return nil, "", common.ErrInvalidShare
	}

	if !sharex.VerifyPIN(pin, share.PinHash) {
		return nil, "", common.ErrInvalidShare
	}

	doc, err := s.repomanager.Documents(s.db).GetByID(ctx, share.DocumentID)
	if err != nil {
		return nil, "", err
	}

	url, err := s.docs.presignGet(ctx, doc.StorageKey, s.config.ShareURLValidity)
	if err != nil {
		return nil, "", fmt.Errorf("presign get: %w", err)
	}

	return doc, url, nil
}
