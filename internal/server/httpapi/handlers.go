package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

type documentDTO struct {
	ID           string    `json:"id"`
	FileName     string    `json:"file_name"`
	MimeType     string    `json:"mime_type"`
	ThumbnailKey string    `json:"thumbnail_key,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toDocumentDTO(doc *models.Document) documentDTO {
	return documentDTO{
		ID:           doc.ID,
		FileName:     doc.FileName,
		MimeType:     doc.MimeType,
		ThumbnailKey: doc.ThumbnailKey,
		CreatedAt:    doc.CreatedAt,
	}
}

type initUploadResponse struct {
	DocumentID      string `json:"document_id"`
	StorageKey      string `json:"storage_key"`
	ThumbnailKey    string `json:"thumbnail_key"`
	PutURL          string `json:"put_url"`
	ThumbnailPutURL string `json:"thumbnail_put_url"`
}

type finalizeRequest struct {
	DocumentID   string `json:"document_id"`
	FileName     string `json:"file_name"`
	MimeType     string `json:"mime_type"`
	StorageKey   string `json:"storage_key"`
	ThumbnailKey string `json:"thumbnail_key"`
}

type listResponse struct {
	Documents []documentDTO `json:"documents"`
}

type viewRequest struct {
	DocumentID string `json:"document_id"`
}

type viewResponse struct {
	Document documentDTO `json:"document"`
	URL      string      `json:"url"`
}

type shareCreateRequest struct {
	DocumentID string `json:"document_id"`
}

type shareCreateResponse struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	PIN       string    `json:"pin"`
	ExpiresAt time.Time `json:"expires_at"`
}

type shareValidateRequest struct {
	Token string `json:"token"`
	PIN   string `json:"pin"`
}

// shareValidateResponse carries the owner identity on purpose: the viewer
// needs it to derive the decryption key, because keys are derived from the
// owner's identity rather than exchanged.
type shareValidateResponse struct {
	OwnerID  string `json:"owner_id"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	URL      string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *HTTPServer) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error(ctx, "Error encoding response", "error", err)
	}
}

// writeError maps domain errors to HTTP statuses. Share failures and token
// failures deliberately carry no detail.
func (s *HTTPServer) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var status int
	var msg string

	switch {
	case errors.Is(err, common.ErrInvalidShare):
		status, msg = http.StatusUnauthorized, "invalid share"
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized):
		status, msg = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrorNotFound):
		status, msg = http.StatusNotFound, "not found"
	default:
		status, msg = http.StatusInternalServerError, "internal error"
		s.logger.Error(ctx, "Request failed", "error", err)
	}

	s.writeJSON(ctx, w, status, errorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func (s *HTTPServer) ping(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) initUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := userIDFromContext(ctx)
	if !ok {
		s.writeError(ctx, w, common.ErrorUnauthorized)
		return
	}

	slot, err := s.documents.InitUpload(ctx, userID)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	s.writeJSON(ctx, w, http.StatusOK, initUploadResponse{
		DocumentID:      slot.DocumentID,
		StorageKey:      slot.StorageKey,
		ThumbnailKey:    slot.ThumbnailKey,
		PutURL:          slot.PutURL,
		ThumbnailPutURL: slot.ThumbnailPutURL,
	})
}

func (s *HTTPServer) finalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := userIDFromContext(ctx)
	if !ok {
		s.writeError(ctx, w, common.ErrorUnauthorized)
		return
	}

	var req finalizeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}
	if req.DocumentID == "" || req.StorageKey == "" || req.FileName == "" {
		s.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	doc := &models.Document{
		ID:           req.DocumentID,
		UserID:       userID,
		FileName:     req.FileName,
		MimeType:     req.MimeType,
		StorageKey:   req.StorageKey,
		ThumbnailKey: req.ThumbnailKey,
	}

	if err := s.documents.Finalize(ctx, doc); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	s.writeJSON(ctx, w, http.StatusCreated, toDocumentDTO(doc))
}

func (s *HTTPServer) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := userIDFromContext(ctx)
	if !ok {
		s.writeError(ctx, w, common.ErrorUnauthorized)
		return
	}

	docs, err := s.documents.List(ctx, userID)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	resp := listResponse{Documents: make([]documentDTO, 0, len(docs))}
	for _, d := range docs {
		resp.Documents = append(resp.Documents, toDocumentDTO(d))
	}

	s.writeJSON(ctx, w, http.StatusOK, resp)
}

func (s *HTTPServer) view(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := userIDFromContext(ctx)
	if !ok {
		s.writeError(ctx, w, common.ErrorUnauthorized)
		return
	}

	var req viewRequest
	if err := decodeJSON(r, &req); err != nil || req.DocumentID == "" {
		s.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	doc, url, err := s.documents.View(ctx, req.DocumentID, userID)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	s.writeJSON(ctx, w, http.StatusOK, viewResponse{Document: toDocumentDTO(doc), URL: url})
}

func (s *HTTPServer) shareCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := userIDFromContext(ctx)
	if !ok {
		s.writeError(ctx, w, common.ErrorUnauthorized)
		return
	}

	var req shareCreateRequest
	if err := decodeJSON(r, &req); err != nil || req.DocumentID == "" {
		s.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	grant, err := s.shares.Issue(ctx, req.DocumentID, userID)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	s.writeJSON(ctx, w, http.StatusCreated, shareCreateResponse{
		Token:     grant.Token,
		URL:       grant.URL,
		PIN:       grant.PIN,
		ExpiresAt: grant.ExpiresAt,
	})
}

func (s *HTTPServer) shareValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req shareValidateRequest
	if err := decodeJSON(r, &req); err != nil || req.Token == "" || req.PIN == "" {
		s.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	doc, url, err := s.shares.Validate(ctx, req.Token, req.PIN)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	s.writeJSON(ctx, w, http.StatusOK, shareValidateResponse{
		OwnerID:  doc.UserID,
		FileName: doc.FileName,
		MimeType: doc.MimeType,
		URL:      url,
	})
}
