// Package buildsink writes the build step's artifacts into one build-scoped
// output directory: the raw schema snapshot, the patched snapshot, and the
// generated client source.
package buildsink

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	rawSchemaFile     = "openapi.json"
	patchedSchemaFile = "openapi_patched.json"
	clientSourceFile  = "client_gen.go"
)

// Sink implements usecase.ArtifactSink over a directory.
type Sink struct {
	dir    string
	logger *slog.Logger
}

// New creates the output directory if needed and returns a Sink writing
// into it.
func New(dir string, logger *slog.Logger) (*Sink, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return &Sink{
		dir:    dir,
		logger: logger.With("component", "build_sink"),
	}, nil
}

// WriteRawSchema stores the fetched document verbatim.
func (s *Sink) WriteRawSchema(data []byte) (string, error) {
	return s.write(rawSchemaFile, data)
}

// WritePatchedSchema stores the pretty-printed patched document, kept so a
// human can diff raw vs. patched when the generator rejects the result.
func (s *Sink) WritePatchedSchema(data []byte) (string, error) {
	return s.write(patchedSchemaFile, data)
}

// WriteClientSource stores the generated client source.
func (s *Sink) WriteClientSource(data []byte) (string, error) {
	return s.write(clientSourceFile, data)
}

func (s *Sink) write(name string, data []byte) (string, error) {
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error("Failed to write artifact", slog.String("path", path), slog.Any("error", err))
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	s.logger.Debug("Artifact written", slog.String("path", path), slog.Int("bytes", len(data)))
	return path, nil
}
