// Package services implements the client-side workflows: staged upload,
// owner and shared viewing, and bulk export. All cryptography happens here,
// on the client; the server and object storage only ever see ciphertext.
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/docvault/internal/client/api"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/cryptox"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/normalize"
)

// Normalizer is the slice of the normalization pipeline the upload flow needs.
type Normalizer interface {
	Run(ctx context.Context, files []normalize.Input, onStage func(normalize.Stage)) (*normalize.Result, error)
}

// Phase identifies an upload workflow step for progress reporting.
type Phase string

const (
	PhaseNormalizing Phase = "normalizing"
	PhaseEncrypting  Phase = "encrypting"
	PhaseUploading   Phase = "uploading"
	PhaseFinalizing  Phase = "finalizing"
	PhaseDone        Phase = "done"
)

// Progress is one progress event. Stage is set only during PhaseNormalizing.
type Progress struct {
	Phase Phase
	Stage normalize.Stage
}

// UploadOutcome describes a completed upload.
type UploadOutcome struct {
	DocumentID        string
	FileName          string
	MimeType          string
	ThumbnailUploaded bool
	Ignored           []string
}

// UploadService drives the full upload workflow: normalize, encrypt, upload
// ciphertexts via presigned URLs, register metadata.
type UploadService struct {
	client     api.Client
	normalizer Normalizer
	logger     logging.Logger
	userID     string
}

func NewUploadService(client api.Client, normalizer Normalizer, logger logging.Logger, userID string) *UploadService {
	return &UploadService{
		client:     client,
		normalizer: normalizer,
		logger:     logger.With("module", "upload"),
		userID:     userID,
	}
}

// ProcessAndUpload runs the whole flow for one document. A failed primary
// upload or metadata registration fails the whole operation; a failed
// thumbnail upload only costs the preview. There are no retries: the caller
// re-runs the command instead.
func (s *UploadService) ProcessAndUpload(ctx context.Context, files []normalize.Input, onProgress func(Progress)) (*UploadOutcome, error) {

	report := func(p Progress) {
		if onProgress != nil {
			onProgress(p)
		}
	}

	report(Progress{Phase: PhaseNormalizing})
	res, err := s.normalizer.Run(ctx, files, func(stage normalize.Stage) {
		report(Progress{Phase: PhaseNormalizing, Stage: stage})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrNormalization, err)
	}

	for _, name := range res.Ignored {
		s.logger.Warn(ctx, "Input file ignored by merge policy", "file", name)
	}

	report(Progress{Phase: PhaseEncrypting})
	key := cryptox.DeriveKey(s.userID)

	var (
		wg                    sync.WaitGroup
		encArtifact, encThumb []byte
		artErr, thumbErr      error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		encArtifact, artErr = cryptox.Encrypt(key, res.Artifact)
	}()

	if res.Thumbnail != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			encThumb, thumbErr = cryptox.Encrypt(key, res.Thumbnail)
		}()
	}
	wg.Wait()

	if artErr != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrEncryption, artErr)
	}
	if thumbErr != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrEncryption, thumbErr)
	}

	slot, err := s.client.InitDocument(ctx)
	if err != nil {
		return nil, fmt.Errorf("init upload: %w", err)
	}

	report(Progress{Phase: PhaseUploading})
	if err := s.client.UploadBlob(ctx, slot.PutURL, encArtifact); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrPrimaryUpload, err)
	}

	thumbnailKey := ""
	thumbnailUploaded := false
	if encThumb != nil {
		if err := s.client.UploadBlob(ctx, slot.ThumbnailPutURL, encThumb); err != nil {
			s.logger.Warn(ctx, "Thumbnail upload failed, continuing without preview", "error", err)
		} else {
			thumbnailKey = slot.ThumbnailKey
			thumbnailUploaded = true
		}
	}

	report(Progress{Phase: PhaseFinalizing})
	err = s.client.FinalizeDocument(ctx, &api.FinalizeRequest{
		DocumentID:   slot.DocumentID,
		FileName:     res.FileName,
		MimeType:     res.MIME,
		StorageKey:   slot.StorageKey,
		ThumbnailKey: thumbnailKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMetadataPersist, err)
	}

	report(Progress{Phase: PhaseDone})

	return &UploadOutcome{
		DocumentID:        slot.DocumentID,
		FileName:          res.FileName,
		MimeType:          res.MIME,
		ThumbnailUploaded: thumbnailUploaded,
		Ignored:           res.Ignored,
	}, nil
}
