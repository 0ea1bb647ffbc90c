// Package services implements the server-side application services over the
// repositories and the S3-compatible object store. Ciphertext never passes
// through these services: clients exchange it with storage directly via
// presigned URLs.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	sc "github.com/dmitrijs2005/docvault/internal/server/config"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
)

// Package-level seams so tests can substitute the AWS SDK entry points.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// DocumentService allocates upload slots, persists document metadata, and
// issues presigned GET URLs for owner views.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewDocumentService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config) *DocumentService {
	return &DocumentService{
		db:          db,
		repomanager: repomanager,
		config:      config,
	}
}

// StorageKeyFor builds the storage key for a document's primary ciphertext:
// {userID}/{yyyy-mm-dd}/{documentID}.enc. Every reader and writer of the
// object store relies on this layout.
func StorageKeyFor(userID, documentID string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%s.enc", userID, now.UTC().Format("2006-01-02"), documentID)
}

// ThumbnailKeyFor builds the sibling key of the encrypted thumbnail.
func ThumbnailKeyFor(userID, documentID string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%s_thumb.enc", userID, now.UTC().Format("2006-01-02"), documentID)
}

func (s *DocumentService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

func (s *DocumentService) presignPut(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.PutURLValidity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

func (s *DocumentService) presignGet(ctx context.Context, key string, validity time.Duration) (string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(validity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// InitUpload allocates a fresh document id, derives the storage keys, and
// presigns PUT URLs for both ciphertexts. Nothing is persisted yet; an
// abandoned slot leaves at most orphaned ciphertext behind.
func (s *DocumentService) InitUpload(ctx context.Context, userID string) (*models.UploadSlot, error) {
	docID := uuid.NewString()
	now := time.Now()

	storageKey := StorageKeyFor(userID, docID, now)
	thumbKey := ThumbnailKeyFor(userID, docID, now)

	putURL, err := s.presignPut(ctx, storageKey)
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}
	thumbPutURL, err := s.presignPut(ctx, thumbKey)
	if err != nil {
		return nil, fmt.Errorf("presign thumbnail put: %w", err)
	}

	return &models.UploadSlot{
		DocumentID:      docID,
		StorageKey:      storageKey,
		ThumbnailKey:    thumbKey,
		PutURL:          putURL,
		ThumbnailPutURL: thumbPutURL,
	}, nil
}

// keyInNamespace reports whether a storage key lies under the user's prefix.
// Storage paths double as key-derivation identities, so a record pointing
// into another user's namespace would hand out both their ciphertext and the
// means to decrypt it.
func keyInNamespace(key, userID string) bool {
	return userID != "" && strings.HasPrefix(key, userID+"/")
}

// Finalize persists the document record after the client has written the
// ciphertexts. ThumbnailKey may be "" when the thumbnail write failed — the
// document stays usable without one. Keys outside the owner's namespace are
// rejected: clients may only register slots issued for themselves.
func (s *DocumentService) Finalize(ctx context.Context, doc *models.Document) error {
	if !keyInNamespace(doc.StorageKey, doc.UserID) {
		return common.ErrorUnauthorized
	}
	if doc.ThumbnailKey != "" && !keyInNamespace(doc.ThumbnailKey, doc.UserID) {
		return common.ErrorUnauthorized
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Documents(tx).Create(ctx, doc)
	})
	if err != nil {
		return fmt.Errorf("error creating document: %w", err)
	}
	return nil
}

// List returns all document records owned by userID.
func (s *DocumentService) List(ctx context.Context, userID string) ([]*models.Document, error) {
	repo := s.repomanager.Documents(s.db)

	docs, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing documents: %w", err)
	}
	return docs, nil
}

// View checks ownership and returns the record plus a presigned GET URL for
// the primary ciphertext. Decryption happens on the client.
func (s *DocumentService) View(ctx context.Context, documentID, userID string) (*models.Document, string, error) {
	repo := s.repomanager.Documents(s.db)

	doc, err := repo.GetOwned(ctx, documentID, userID)
	if err != nil {
		return nil, "", err
	}

	url, err := s.presignGet(ctx, doc.StorageKey, s.config.ViewURLValidity)
	if err != nil {
		return nil, "", fmt.Errorf("presign get: %w", err)
	}

	return doc, url, nil
}
