// Package fetch obtains the vendor OpenAPI document from its source: an
// HTTP(S) URL, a local file, or a github:// locator. It returns raw text only;
// decoding belongs to the pipeline.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/oasforge/oasforge/internal/domain"
	"github.com/oasforge/oasforge/internal/usecase"
)

// Fetcher implements usecase.SchemaFetcher.
type Fetcher struct {
	httpClient *http.Client
	logger     *slog.Logger
	discoverer *Discoverer
	gh         *GHClient
}

// New creates a Fetcher.
func New(client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		httpClient: client,
		logger:     logger.With("component", "schema_fetcher"),
		discoverer: NewDiscoverer(client, logger),
		gh:         NewGHClient(),
	}
}

// Fetch performs the one blocking fetch of the build step and returns the raw
// document text. Non-2xx responses are failures; there is no retry.
func (f *Fetcher) Fetch(ctx context.Context, cfg usecase.FetchConfig) (domain.SchemaDocument, error) {
	log := f.logger.With(slog.String("source", cfg.Source))
	log.Info("Fetching OpenAPI schema")

	if strings.HasPrefix(cfg.Source, "github://") {
		data, err := f.gh.FetchFile(ctx, cfg.Source)
		if err != nil {
			log.Error("Failed to fetch schema from GitHub", slog.Any("error", err))
			return domain.SchemaDocument{}, fmt.Errorf("failed to fetch schema from GitHub %s: %w", cfg.Source, err)
		}
		log.Info("Schema fetched from GitHub", slog.Int("bytes", len(data)))
		return domain.SchemaDocument{Source: cfg.Source, Kind: domain.SourceKindGitHub, RawData: data}, nil
	}

	u, parseErr := url.ParseRequestURI(cfg.Source)
	if parseErr == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return f.fetchURL(ctx, log, cfg)
	}

	log.Debug("Assuming local file path")
	data, err := os.ReadFile(cfg.Source)
	if err != nil {
		log.Error("Failed to read schema from file", slog.Any("error", err))
		return domain.SchemaDocument{}, fmt.Errorf("failed to read schema from file %s: %w", cfg.Source, err)
	}
	return domain.SchemaDocument{Source: cfg.Source, Kind: domain.SourceKindFile, RawData: data}, nil
}

func (f *Fetcher) fetchURL(ctx context.Context, log *slog.Logger, cfg usecase.FetchConfig) (domain.SchemaDocument, error) {
	// Bare base URLs get a discovery pass over well-known schema paths first;
	// a failed discovery falls back to the source as given.
	resolved, err := f.discoverer.ResolveSource(ctx, cfg.Source, cfg.Headers)
	if err != nil {
		log.Warn("Failed to resolve schema source", slog.Any("error", err))
		resolved = cfg.Source
	} else if resolved != cfg.Source {
		log.Info("Auto-discovered OpenAPI schema", slog.String("resolved_url", resolved))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, nil)
	if err != nil {
		log.Error("Failed to create HTTP request", slog.Any("error", err))
		return domain.SchemaDocument{}, fmt.Errorf("failed to create request for %s: %w", cfg.Source, err)
	}
	for key, value := range cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		log.Error("Failed to fetch schema from URL", slog.Any("error", err))
		return domain.SchemaDocument{}, fmt.Errorf("failed to fetch schema from URL %s: %w", cfg.Source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("Received non-OK status code from URL", slog.String("status", resp.Status), slog.Int("status_code", resp.StatusCode))
		return domain.SchemaDocument{}, fmt.Errorf("failed to fetch schema from URL %s: status %s", resolved, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body from URL", slog.Any("error", err))
		return domain.SchemaDocument{}, fmt.Errorf("failed to read response body from %s: %w", resolved, err)
	}

	log.Info("Schema fetched", slog.Int("bytes", len(data)))
	return domain.SchemaDocument{Source: cfg.Source, Kind: domain.SourceKindHTTP, RawData: data}, nil
}
