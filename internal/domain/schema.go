package domain

// SourceKind identifies where a schema document came from.
type SourceKind string

const (
	SourceKindHTTP   SourceKind = "http"   // fetched from an HTTP(S) URL
	SourceKindFile   SourceKind = "file"   // read from a local path
	SourceKindGitHub SourceKind = "github" // github://owner/repo/path[@ref] via the gh CLI
)

// SchemaDocument is a fetched OpenAPI document at some point in the pipeline.
// RawData is the exact bytes as fetched; Tree is the generic decoded form the
// patch passes operate on. Tree is nil until the pipeline decodes RawData.
type SchemaDocument struct {
	// Source is the URL, file path, or github:// locator the document came from.
	Source string
	// Kind records how the document was obtained.
	Kind SourceKind
	// RawData holds the unprocessed document text (JSON or YAML).
	RawData []byte
	// Tree is the decoded document as a generic JSON tree. The patch passes
	// mutate it in place; it is owned by the pipeline for the build's duration.
	Tree map[string]any
}

// Artifacts lists the on-disk outputs of one build invocation. The raw and
// patched snapshots exist so a human can diff them when the generator rejects
// the patched document.
type Artifacts struct {
	RawSchemaPath     string
	PatchedSchemaPath string
	ClientSourcePath  string
}

// GeneratedClient is the generator collaborator's output: Go source for one
// API client, ready to be written into the build output directory.
type GeneratedClient struct {
	// Package is the package clause the source was emitted under.
	Package string
	// Source is the complete generated Go source file.
	Source []byte
	// OperationCount is how many client methods were emitted.
	OperationCount int
}
