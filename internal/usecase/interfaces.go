package usecase

import (
	"context"
	"errors"

	"github.com/oasforge/oasforge/internal/domain"
)

// Standard errors for the build pipeline's failure taxonomy. Every stage
// failure wraps one of these so callers can classify with errors.Is while the
// wrapped message keeps the stage-specific diagnostic. All of them abort the
// build; none is retried.
var (
	// ErrFetch: network failure or non-success response from the schema source.
	ErrFetch = errors.New("schema fetch failed")
	// ErrParse: fetched text is not well-formed JSON or YAML.
	ErrParse = errors.New("schema parse failed")
	// ErrSchemaModel: the patched tree does not fit the strict OpenAPI model.
	// Diagnostics must name the on-disk patched artifact so a human can
	// inspect what failed.
	ErrSchemaModel = errors.New("patched schema rejected by OpenAPI model")
	// ErrGenerate: the generator rejected a structurally valid document.
	ErrGenerate = errors.New("client generation failed")
	// ErrWrite: an artifact write failed.
	ErrWrite = errors.New("artifact write failed")
)

// FetchConfig carries the source locator plus optional request headers for
// sources that need them (private schema endpoints, API gateways).
type FetchConfig struct {
	Source  string
	Headers map[string]string
}

// SchemaFetcher performs the one blocking fetch of the vendor schema and
// returns its raw text. It does not parse; decoding belongs to the pipeline.
type SchemaFetcher interface {
	Fetch(ctx context.Context, cfg FetchConfig) (domain.SchemaDocument, error)
}

// DocumentPatcher rewrites a decoded schema tree in place so that it satisfies
// the subset of OpenAPI the client generator supports. It never fails:
// malformed or unexpected nodes are skipped, not fatal.
type DocumentPatcher interface {
	Patch(doc map[string]any)
}

// ClientGenerator strict-types the patched document bytes against the OpenAPI
// model and emits client source. Load failures wrap ErrSchemaModel; generation
// failures wrap ErrGenerate.
type ClientGenerator interface {
	Generate(ctx context.Context, patched []byte) (domain.GeneratedClient, error)
}

// ArtifactSink writes build artifacts into the build-scoped output directory
// and reports the path each landed at. Write failures wrap ErrWrite.
type ArtifactSink interface {
	WriteRawSchema(data []byte) (string, error)
	WritePatchedSchema(data []byte) (string, error)
	WriteClientSource(data []byte) (string, error)
}
