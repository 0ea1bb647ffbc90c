package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docvault/internal/client/config"
	"github.com/dmitrijs2005/docvault/internal/common"
)

func newClient(serverURL string) *HTTPClient {
	cfg := &config.Config{
		ServerAddr:     serverURL,
		AccessToken:    "token-1",
		UserID:         "user-1",
		RequestTimeout: 5 * time.Second,
	}
	return NewHTTPClient(cfg)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ping", r.URL.Path)
		assert.Empty(t, r.Header.Get(common.AuthHeaderName))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	assert.NoError(t, newClient(srv.URL).Ping(context.Background()))
}

func TestInitDocument_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/documents/init", r.URL.Path)
		assert.Equal(t, common.AuthSchemePrefix+"token-1", r.Header.Get(common.AuthHeaderName))
		json.NewEncoder(w).Encode(UploadSlot{
			DocumentID: "doc-1",
			PutURL:     "https://s3.test/put/primary",
		})
	}))
	defer srv.Close()

	slot, err := newClient(srv.URL).InitDocument(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "doc-1", slot.DocumentID)
	assert.Equal(t, "https://s3.test/put/primary", slot.PutURL)
}

func TestFinalizeDocument(t *testing.T) {
	var got FinalizeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := newClient(srv.URL).FinalizeDocument(context.Background(), &FinalizeRequest{
		DocumentID: "doc-1",
		FileName:   "scan.jpg",
		StorageKey: "user-1/2025-03-09/doc-1.enc",
	})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", got.DocumentID)
	assert.Equal(t, "scan.jpg", got.FileName)
}

func TestListDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"documents":[{"id":"doc-1","file_name":"a.jpg"},{"id":"doc-2","file_name":"b.pdf"}]}`))
	}))
	defer srv.Close()

	docs, err := newClient(srv.URL).ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b.pdf", docs[1].FileName)
}

func TestViewDocument_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).ViewDocument(context.Background(), "doc-x")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestValidateShare_FailureMapsToInvalidShare(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(common.AuthHeaderName))
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid share"}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).ValidateShare(context.Background(), "tok-1", "000000")
	assert.ErrorIs(t, err, common.ErrInvalidShare)
}

func TestValidateShare_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tok-1", req["token"])
		assert.Equal(t, "042137", req["pin"])
		json.NewEncoder(w).Encode(SharedDocument{FileName: "scan.jpg", URL: "https://s3.test/get/key"})
	}))
	defer srv.Close()

	doc, err := newClient(srv.URL).ValidateShare(context.Background(), "tok-1", "042137")
	require.NoError(t, err)
	assert.Equal(t, "scan.jpg", doc.FileName)
}

func TestBlobTransfers(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03, 0x04}

	var uploaded []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			// no bearer token on presigned URLs
			assert.Empty(t, r.Header.Get(common.AuthHeaderName))
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			uploaded = body
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			w.Write(payload)
		}
	}))
	defer srv.Close()

	c := newClient(srv.URL)

	require.NoError(t, c.UploadBlob(context.Background(), srv.URL+"/blob", payload))
	assert.Equal(t, payload, uploaded)

	got, err := c.DownloadBlob(context.Background(), srv.URL+"/blob")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestBlobTransfers_NotBoundByRequestTimeout(t *testing.T) {
	payload := []byte("slow ciphertext")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(120 * time.Millisecond)
		switch r.Method {
		case http.MethodPut:
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			w.Write(payload)
		}
	}))
	defer srv.Close()

	cfg := &config.Config{
		ServerAddr:     srv.URL,
		AccessToken:    "token-1",
		UserID:         "user-1",
		RequestTimeout: 50 * time.Millisecond,
	}
	c := NewHTTPClient(cfg)

	// The JSON timeout would have fired long before the server answers;
	// blob transfers are governed only by the caller's context.
	require.NoError(t, c.UploadBlob(context.Background(), srv.URL+"/blob", payload))

	got, err := c.DownloadBlob(context.Background(), srv.URL+"/blob")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestUploadBlob_FailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := newClient(srv.URL).UploadBlob(context.Background(), srv.URL+"/blob", []byte{1})
	assert.Error(t, err)
}
