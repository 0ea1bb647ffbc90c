package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/client/config"
	"github.com/dmitrijs2005/docvault/internal/common"
)

// HTTPClient implements Client over the backend's JSON API. Presigned blob
// transfers go straight to object storage and carry no bearer token.
type HTTPClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client

	// blobClient carries no timeout: a multi-megabyte ciphertext transfer is
	// bounded by the caller's context, not by the JSON request timeout.
	blobClient *http.Client
}

func NewHTTPClient(cfg *config.Config) *HTTPClient {
	return &HTTPClient{
		baseURL:     strings.TrimRight(cfg.ServerAddr, "/"),
		accessToken: cfg.AccessToken,
		httpClient:  &http.Client{Timeout: cfg.RequestTimeout},
		blobClient:  &http.Client{},
	}
}

// doJSON issues a request with an optional JSON body and decodes the JSON
// response into out (when out is non-nil). Non-2xx statuses map onto the
// shared error sentinels.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, out any, authorized bool) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorized {
		req.Header.Set(common.AuthHeaderName, common.AuthSchemePrefix+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return common.ErrorUnauthorized
		case http.StatusNotFound:
			return common.ErrorNotFound
		default:
			return fmt.Errorf("%w: unexpected status %d", common.ErrorInternal, resp.StatusCode)
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/api/ping", nil, nil, false)
}

func (c *HTTPClient) InitDocument(ctx context.Context) (*UploadSlot, error) {
	var slot UploadSlot
	if err := c.doJSON(ctx, http.MethodPost, "/api/documents/init", nil, &slot, true); err != nil {
		return nil, err
	}
	return &slot, nil
}

func (c *HTTPClient) FinalizeDocument(ctx context.Context, req *FinalizeRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/api/documents", req, nil, true)
}

func (c *HTTPClient) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	var resp struct {
		Documents []DocumentInfo `json:"documents"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/documents", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

func (c *HTTPClient) ViewDocument(ctx context.Context, documentID string) (*DocumentView, error) {
	var view DocumentView
	req := map[string]string{"document_id": documentID}
	if err := c.doJSON(ctx, http.MethodPost, "/api/documents/view", req, &view, true); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *HTTPClient) CreateShare(ctx context.Context, documentID string) (*ShareGrant, error) {
	var grant ShareGrant
	req := map[string]string{"document_id": documentID}
	if err := c.doJSON(ctx, http.MethodPost, "/api/share/create", req, &grant, true); err != nil {
		return nil, err
	}
	return &grant, nil
}

func (c *HTTPClient) ValidateShare(ctx context.Context, token, pin string) (*SharedDocument, error) {
	var doc SharedDocument
	req := map[string]string{"token": token, "pin": pin}
	err := c.doJSON(ctx, http.MethodPost, "/api/share/validate", req, &doc, false)
	if err != nil {
		// The server answers 401 for every share failure. Keep that
		// indistinguishability on the client side too.
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, common.ErrInvalidShare
		}
		return nil, err
	}
	return &doc, nil
}

// UploadBlob PUTs ciphertext to a presigned URL.
func (c *HTTPClient) UploadBlob(ctx context.Context, url string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.blobClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload failed: unexpected status %d", resp.StatusCode)
	}

	return nil
}

// DownloadBlob GETs ciphertext from a presigned URL.
func (c *HTTPClient) DownloadBlob(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.blobClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download failed: unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
