// Package httpapi exposes the server's REST surface: authenticated document
// routes for owners and the anonymous share-validation route. Handlers move
// metadata and presigned URLs only; ciphertext travels between clients and
// object storage directly.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/services"
)

// DocumentProvider is the slice of the document service the handlers need.
type DocumentProvider interface {
	InitUpload(ctx context.Context, userID string) (*models.UploadSlot, error)
	Finalize(ctx context.Context, doc *models.Document) error
	List(ctx context.Context, userID string) ([]*models.Document, error)
	View(ctx context.Context, documentID, userID string) (*models.Document, string, error)
}

// ShareProvider is the slice of the share service the handlers need.
type ShareProvider interface {
	Issue(ctx context.Context, documentID, userID string) (*services.Grant, error)
	Validate(ctx context.Context, token, pin string) (*models.Document, string, error)
}

type HTTPServer struct {
	address   string
	documents DocumentProvider
	shares    ShareProvider
	logger    logging.Logger
	jwtSecret []byte
}

func NewHTTPServer(a string, l logging.Logger, ds DocumentProvider, ss ShareProvider, secretKey string) *HTTPServer {
	return &HTTPServer{
		address:   a,
		logger:    l.With("module", "http_server"),
		documents: ds,
		shares:    ss,
		jwtSecret: []byte(secretKey),
	}
}

func (s *HTTPServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", s.ping)

	mux.HandleFunc("POST /api/documents/init", s.withAuth(s.initUpload))
	mux.HandleFunc("POST /api/documents", s.withAuth(s.finalize))
	mux.HandleFunc("GET /api/documents", s.withAuth(s.list))
	mux.HandleFunc("POST /api/documents/view", s.withAuth(s.view))

	mux.HandleFunc("POST /api/share/create", s.withAuth(s.shareCreate))
	mux.HandleFunc("POST /api/share/validate", s.shareValidate)

	return mux
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "Error stopping HTTP server", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
