package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Common OpenAPI schema paths used by various frameworks.
var commonSchemaPaths = []string{
	"/openapi.json",            // FastAPI default
	"/docs/openapi.json",       // Alternative FastAPI path
	"/swagger.json",            // Swagger/OpenAPI 2.0
	"/v3/api-docs",             // SpringDoc OpenAPI 3.0
	"/api-docs",                // SpringFox
	"/api/openapi.json",        // Custom API prefix
	"/api/v1/openapi.json",     // Versioned API
	"/swagger/v1/swagger.json", // .NET default
	"/spec",                    // Alternative spec path
}

// Discoverer probes well-known schema paths when given a bare base URL
// instead of a direct schema URL.
type Discoverer struct {
	client *http.Client
	logger *slog.Logger
}

// NewDiscoverer creates a Discoverer.
func NewDiscoverer(client *http.Client, logger *slog.Logger) *Discoverer {
	return &Discoverer{
		client: client,
		logger: logger.With("component", "schema_discoverer"),
	}
}

// ResolveSource returns source unchanged when it already looks like a direct
// schema URL, otherwise attempts discovery against well-known paths. A failed
// discovery is not fatal: the original source is returned so explicit URLs
// keep working.
func (d *Discoverer) ResolveSource(ctx context.Context, source string, headers map[string]string) (string, error) {
	log := d.logger.With(slog.String("source", source))

	lower := strings.ToLower(source)
	if strings.HasSuffix(lower, ".json") ||
		strings.HasSuffix(lower, ".yaml") ||
		strings.HasSuffix(lower, ".yml") ||
		strings.Contains(lower, "openapi") ||
		strings.Contains(lower, "swagger") ||
		strings.Contains(lower, "api-docs") {
		log.Debug("Source appears to be a direct schema URL")
		return source, nil
	}

	log.Info("Source appears to be a base URL, attempting auto-discovery")
	discovered, err := d.discover(ctx, source, headers)
	if err != nil {
		log.Warn("Auto-discovery failed, using original source", slog.Any("error", err))
		return source, nil
	}
	return discovered, nil
}

func (d *Discoverer) discover(ctx context.Context, baseURL string, headers map[string]string) (string, error) {
	log := d.logger.With(slog.String("base_url", baseURL))

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if parsed.Scheme == "" {
		return "", fmt.Errorf("base URL must include scheme (http:// or https://)")
	}

	for _, path := range commonSchemaPaths {
		candidate := strings.TrimRight(baseURL, "/") + path
		log.Debug("Trying schema path", slog.String("url", candidate))

		found, err := d.probe(ctx, candidate, headers)
		if err != nil {
			log.Debug("Failed to check endpoint", slog.String("url", candidate), slog.Any("error", err))
			continue
		}
		if found {
			log.Info("Found OpenAPI schema", slog.String("url", candidate))
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no OpenAPI schema found at base URL: %s", baseURL)
}

// probe checks whether a URL answers with something that looks like a schema.
// A 200 with a JSON-ish content type is enough for discovery purposes.
func (d *Discoverer) probe(ctx context.Context, candidate string, headers map[string]string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, candidate, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json, application/vnd.oai.openapi+json")
	req.Header.Set("User-Agent", "oasforge/1.0")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") &&
		!strings.Contains(contentType, "application/vnd.oai.openapi+json") {
		return false, nil
	}
	return true, nil
}
