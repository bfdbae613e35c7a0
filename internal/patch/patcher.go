// Package patch rewrites a vendor OpenAPI document, decoded as a generic JSON
// tree, into the stricter shape the client generator can consume: every
// operation gets an operationId, and schema composition keywords and invalid
// constraint combinations are collapsed away.
package patch

import "log/slog"

// Patcher applies the full normalization pass to a decoded OpenAPI document.
// It implements usecase.DocumentPatcher.
type Patcher struct {
	logger *slog.Logger
}

// New creates a Patcher.
func New(logger *slog.Logger) *Patcher {
	return &Patcher{logger: logger.With("component", "patcher")}
}

// Patch mutates doc in place: first the operation-ID pass over paths, then the
// simplification pass over every named schema. Running it twice produces no
// further change.
func (p *Patcher) Patch(doc map[string]any) {
	ids := EnsureOperationIDs(doc)
	if ids > 0 {
		p.logger.Info("Synthesized missing operation IDs", slog.Int("count", ids))
	}
	simplified := SimplifySchemas(doc)
	p.logger.Info("Simplified component schemas", slog.Int("count", simplified))
}
