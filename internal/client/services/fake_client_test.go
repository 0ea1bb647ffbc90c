package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/dmitrijs2005/docvault/internal/client/api"
	"github.com/dmitrijs2005/docvault/internal/logging"
)

// fakeClient implements api.Client with per-method function fields, so each
// test wires only what it exercises.
type fakeClient struct {
	pingFunc          func(ctx context.Context) error
	initDocumentFunc  func(ctx context.Context) (*api.UploadSlot, error)
	finalizeFunc      func(ctx context.Context, req *api.FinalizeRequest) error
	listDocumentsFunc func(ctx context.Context) ([]api.DocumentInfo, error)
	viewDocumentFunc  func(ctx context.Context, documentID string) (*api.DocumentView, error)
	createShareFunc   func(ctx context.Context, documentID string) (*api.ShareGrant, error)
	validateShareFunc func(ctx context.Context, token, pin string) (*api.SharedDocument, error)
	uploadBlobFunc    func(ctx context.Context, url string, data []byte) error
	downloadBlobFunc  func(ctx context.Context, url string) ([]byte, error)
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.pingFunc(ctx) }
func (f *fakeClient) InitDocument(ctx context.Context) (*api.UploadSlot, error) {
	return f.initDocumentFunc(ctx)
}
func (f *fakeClient) FinalizeDocument(ctx context.Context, req *api.FinalizeRequest) error {
	return f.finalizeFunc(ctx, req)
}
func (f *fakeClient) ListDocuments(ctx context.Context) ([]api.DocumentInfo, error) {
	return f.listDocumentsFunc(ctx)
}
func (f *fakeClient) ViewDocument(ctx context.Context, documentID string) (*api.DocumentView, error) {
	return f.viewDocumentFunc(ctx, documentID)
}
func (f *fakeClient) CreateShare(ctx context.Context, documentID string) (*api.ShareGrant, error) {
	return f.createShareFunc(ctx, documentID)
}
func (f *fakeClient) ValidateShare(ctx context.Context, token, pin string) (*api.SharedDocument, error) {
	return f.validateShareFunc(ctx, token, pin)
}
func (f *fakeClient) UploadBlob(ctx context.Context, url string, data []byte) error {
	return f.uploadBlobFunc(ctx, url, data)
}
func (f *fakeClient) DownloadBlob(ctx context.Context, url string) ([]byte, error) {
	return f.downloadBlobFunc(ctx, url)
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}
