package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	sc "github.com/dmitrijs2005/docvault/internal/server/config"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/documents"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/shares"
	"github.com/dmitrijs2005/docvault/internal/sharex"
)

type fakeDocumentRepo struct {
	createFunc     func(ctx context.Context, doc *models.Document) error
	getByIDFunc    func(ctx context.Context, id string) (*models.Document, error)
	getOwnedFunc   func(ctx context.Context, id, userID string) (*models.Document, error)
	listByUserFunc func(ctx context.Context, userID string) ([]*models.Document, error)
}

func (f *fakeDocumentRepo) Create(ctx context.Context, doc *models.Document) error {
	return f.createFunc(ctx, doc)
}
func (f *fakeDocumentRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	return f.getByIDFunc(ctx, id)
}
func (f *fakeDocumentRepo) GetOwned(ctx context.Context, id, userID string) (*models.Document, error) {
	return f.getOwnedFunc(ctx, id, userID)
}
func (f *fakeDocumentRepo) ListByUser(ctx context.Context, userID string) ([]*models.Document, error) {
	return f.listByUserFunc(ctx, userID)
}

type fakeShareRepo struct {
	createFunc     func(ctx context.Context, share *models.Share) error
	getByTokenFunc func(ctx context.Context, token string) (*models.Share, error)
}

func (f *fakeShareRepo) Create(ctx context.Context, share *models.Share) error {
	return f.createFunc(ctx, share)
}
func (f *fakeShareRepo) GetByToken(ctx context.Context, token string) (*models.Share, error) {
	return f.getByTokenFunc(ctx, token)
}

type fakeRepoManager struct {
	docs   documents.Repository
	shares shares.Repository
}

func (m *fakeRepoManager) Documents(db dbx.DBTX) documents.Repository { return m.docs }
func (m *fakeRepoManager) Shares(db dbx.DBTX) shares.Repository      { return m.shares }
func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

// stubPresign replaces the AWS SDK seams with stubs that return deterministic
// URLs carrying the requested key, and restores them on cleanup.
func stubPresign(t *testing.T) {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNewClient := newS3ClientFromConfig
	origNewPresign := newS3PresignClient
	origPut := presignPutObject
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewClient
		newS3PresignClient = origNewPresign
		presignPutObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return nil
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return nil
	}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://s3.test/put/" + *in.Key}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://s3.test/get/" + *in.Key}, nil
	}
}

func testConfig() *sc.Config {
	cfg := &sc.Config{}
	cfg.LoadDefaults()
	return cfg
}

func TestStorageKeyConvention(t *testing.T) {
	now := time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, "user-1/2025-03-09/doc-1.enc", StorageKeyFor("user-1", "doc-1", now))
	assert.Equal(t, "user-1/2025-03-09/doc-1_thumb.enc", ThumbnailKeyFor("user-1", "doc-1", now))
}

func TestDocumentService_InitUpload(t *testing.T) {
	stubPresign(t)

	svc := NewDocumentService(nil, &fakeRepoManager{}, testConfig())

	slot, err := svc.InitUpload(context.Background(), "user-1")
	require.NoError(t, err)

	require.NotEmpty(t, slot.DocumentID)
	uuidRe := regexp.MustCompile(`^[0-9a-f-]{36}$`)
	assert.Regexp(t, uuidRe, slot.DocumentID)

	assert.True(t, strings.HasPrefix(slot.StorageKey, "user-1/"))
	assert.True(t, strings.HasSuffix(slot.StorageKey, slot.DocumentID+".enc"))
	assert.True(t, strings.HasSuffix(slot.ThumbnailKey, slot.DocumentID+"_thumb.enc"))

	assert.Equal(t, "https://s3.test/put/"+slot.StorageKey, slot.PutURL)
	assert.Equal(t, "https://s3.test/put/"+slot.ThumbnailKey, slot.ThumbnailPutURL)
}

func TestDocumentService_Finalize(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var created *models.Document
	rm := &fakeRepoManager{docs: &fakeDocumentRepo{
		createFunc: func(ctx context.Context, doc *models.Document) error {
			created = doc
			return nil
		},
	}}

	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := NewDocumentService(db, rm, testConfig())
	doc := &models.Document{
		ID:           "doc-1",
		UserID:       "user-1",
		FileName:     "scan.jpg",
		StorageKey:   "user-1/2025-03-09/doc-1.enc",
		ThumbnailKey: "user-1/2025-03-09/doc-1_thumb.enc",
	}

	require.NoError(t, svc.Finalize(context.Background(), doc))
	assert.Equal(t, doc, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentService_Finalize_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rm := &fakeRepoManager{docs: &fakeDocumentRepo{
		createFunc: func(ctx context.Context, doc *models.Document) error {
			return errors.New("insert failed")
		},
	}}

	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := NewDocumentService(db, rm, testConfig())

	err = svc.Finalize(context.Background(), &models.Document{
		ID:         "doc-1",
		UserID:     "user-1",
		StorageKey: "user-1/2025-03-09/doc-1.enc",
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentService_Finalize_RejectsForeignKeys(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rm := &fakeRepoManager{docs: &fakeDocumentRepo{
		createFunc: func(ctx context.Context, doc *models.Document) error {
			t.Fatal("no record may be created for a foreign storage key")
			return nil
		},
	}}

	svc := NewDocumentService(db, rm, testConfig())

	tests := []struct {
		name string
		doc  *models.Document
	}{
		{
			name: "storage key in another user's namespace",
			doc: &models.Document{
				ID:         "their-doc",
				UserID:     "attacker",
				FileName:   "scan.jpg",
				StorageKey: "victim-user/2025-03-09/their-doc.enc",
			},
		},
		{
			name: "thumbnail key in another user's namespace",
			doc: &models.Document{
				ID:           "doc-1",
				UserID:       "attacker",
				FileName:     "scan.jpg",
				StorageKey:   "attacker/2025-03-09/doc-1.enc",
				ThumbnailKey: "victim-user/2025-03-09/their-doc_thumb.enc",
			},
		},
		{
			name: "prefix that only resembles the namespace",
			doc: &models.Document{
				ID:         "doc-1",
				UserID:     "user",
				FileName:   "scan.jpg",
				StorageKey: "user-1/2025-03-09/doc-1.enc",
			},
		},
		{
			name: "empty storage key",
			doc: &models.Document{
				ID:       "doc-1",
				UserID:   "user-1",
				FileName: "scan.jpg",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Finalize(context.Background(), tc.doc)
			assert.ErrorIs(t, err, common.ErrorUnauthorized)
		})
	}

	// nothing was persisted, no transaction was even started
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentService_View(t *testing.T) {
	stubPresign(t)

	stored := &models.Document{ID: "doc-1", UserID: "user-1", StorageKey: "user-1/2025-03-09/doc-1.enc"}
	rm := &fakeRepoManager{docs: &fakeDocumentRepo{
		getOwnedFunc: func(ctx context.Context, id, userID string) (*models.Document, error) {
			if id == stored.ID && userID == stored.UserID {
				return stored, nil
			}
			return nil, common.ErrorNotFound
		},
	}}

	svc := NewDocumentService(nil, rm, testConfig())

	doc, url, err := svc.View(context.Background(), "doc-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, stored, doc)
	assert.Equal(t, "https://s3.test/get/"+stored.StorageKey, url)

	_, _, err = svc.View(context.Background(), "doc-1", "somebody-else")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestShareService_Issue(t *testing.T) {
	stubPresign(t)
	cfg := testConfig()

	var saved *models.Share
	rm := &fakeRepoManager{
		docs: &fakeDocumentRepo{
			getOwnedFunc: func(ctx context.Context, id, userID string) (*models.Document, error) {
				if userID != "user-1" {
					return nil, common.ErrorNotFound
				}
				return &models.Document{ID: id, UserID: userID}, nil
			},
		},
		shares: &fakeShareRepo{
			createFunc: func(ctx context.Context, share *models.Share) error {
				saved = share
				return nil
			},
		},
	}

	docs := NewDocumentService(nil, rm, cfg)
	svc := NewShareService(nil, rm, docs, cfg)

	before := time.Now()
	grant, err := svc.Issue(context.Background(), "doc-1", "user-1")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), grant.PIN)
	assert.Contains(t, grant.URL, "/share/"+grant.Token)

	require.NotNil(t, saved)
	assert.Equal(t, grant.Token, saved.Token)
	assert.Equal(t, "doc-1", saved.DocumentID)
	assert.True(t, sharex.VerifyPIN(grant.PIN, saved.PinHash))

	wantExpiry := before.Add(cfg.ShareTTL)
	assert.WithinDuration(t, wantExpiry, saved.ExpiresAt, 5*time.Second)

	_, err = svc.Issue(context.Background(), "doc-1", "somebody-else")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestShareService_Validate(t *testing.T) {
	stubPresign(t)
	cfg := testConfig()

	pin := "042137"
	hash, err := sharex.HashPIN(pin)
	require.NoError(t, err)

	live := &models.Share{
		Token:      "tok-live",
		DocumentID: "doc-1",
		PinHash:    hash,
		ExpiresAt:  time.Now().Add(time.Hour),
	}
	expired := &models.Share{
		Token:      "tok-expired",
		DocumentID: "doc-1",
		PinHash:    hash,
		ExpiresAt:  time.Now().Add(-time.Minute),
	}

	stored := &models.Document{ID: "doc-1", UserID: "user-1", StorageKey: "user-1/2025-03-09/doc-1.enc"}
	rm := &fakeRepoManager{
		docs: &fakeDocumentRepo{
			getByIDFunc: func(ctx context.Context, id string) (*models.Document, error) {
				return stored, nil
			},
		},
		shares: &fakeShareRepo{
			getByTokenFunc: func(ctx context.Context, token string) (*models.Share, error) {
				switch token {
				case live.Token:
					return live, nil
				case expired.Token:
					return expired, nil
				}
				return nil, common.ErrorNotFound
			},
		},
	}

	docs := NewDocumentService(nil, rm, cfg)
	svc := NewShareService(nil, rm, docs, cfg)

	t.Run("valid token and pin", func(t *testing.T) {
		doc, url, err := svc.Validate(context.Background(), live.Token, pin)
		require.NoError(t, err)
		assert.Equal(t, stored, doc)
		assert.Equal(t, "https://s3.test/get/"+stored.StorageKey, url)
	})

	t.Run("failures are indistinguishable", func(t *testing.T) {
		_, _, errAbsent := svc.Validate(context.Background(), "no-such-token", pin)
		_, _, errExpired := svc.Validate(context.Background(), expired.Token, pin)
		_, _, errWrongPin := svc.Validate(context.Background(), live.Token, "999999")

		assert.ErrorIs(t, errAbsent, common.ErrInvalidShare)
		assert.ErrorIs(t, errExpired, common.ErrInvalidShare)
		assert.ErrorIs(t, errWrongPin, common.ErrInvalidShare)

		assert.Equal(t, errAbsent.Error(), errExpired.Error())
		assert.Equal(t, errExpired.Error(), errWrongPin.Error())
	})
}
