package fetch_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasforge/oasforge/internal/adapter/outbound/fetch"
	"github.com/oasforge/oasforge/internal/domain"
	"github.com/oasforge/oasforge/internal/usecase"
)

func newTestFetcher(t *testing.T, handler http.Handler) (*fetch.Fetcher, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return fetch.New(server.Client(), logger), server
}

func TestFetcher_FetchURL(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	const body = `{"openapi": "3.0.0", "paths": {}}`
	fetcher, server := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/openapi.json", r.URL.Path)
		assert.Equal("token abc", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))

	doc, err := fetcher.Fetch(ctx, usecase.FetchConfig{
		Source:  server.URL + "/openapi.json",
		Headers: map[string]string{"Authorization": "token abc"},
	})

	assert.NoError(err)
	assert.Equal(domain.SourceKindHTTP, doc.Kind)
	assert.Equal(body, string(doc.RawData))
}

func TestFetcher_FetchURLNonOKStatusFails(t *testing.T) {
	ctx := context.Background()

	fetcher, server := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))

	_, err := fetcher.Fetch(ctx, usecase.FetchConfig{Source: server.URL + "/openapi.json"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestFetcher_AutoDiscoversFromBaseURL(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	const body = `{"openapi": "3.0.0"}`
	mux := http.NewServeMux()
	// Only the SpringDoc well-known path answers; the rest 404.
	mux.HandleFunc("/v3/api-docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	})
	fetcher, server := newTestFetcher(t, mux)

	doc, err := fetcher.Fetch(ctx, usecase.FetchConfig{Source: server.URL})

	assert.NoError(err)
	assert.Equal(body, string(doc.RawData))
}

func TestFetcher_FetchLocalFile(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"paths": {}}`), 0o644))

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	fetcher := fetch.New(nil, logger)

	doc, err := fetcher.Fetch(ctx, usecase.FetchConfig{Source: path})

	assert.NoError(err)
	assert.Equal(domain.SourceKindFile, doc.Kind)
	assert.Equal(`{"paths": {}}`, string(doc.RawData))
}

func TestFetcher_MissingFileFails(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	fetcher := fetch.New(nil, logger)

	_, err := fetcher.Fetch(context.Background(), usecase.FetchConfig{Source: "/nonexistent/schema.json"})

	assert.Error(t, err)
}
