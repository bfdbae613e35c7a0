package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/oasforge/oasforge/internal/domain"
)

// GenerateClientUseCase runs the whole build step: fetch the vendor schema,
// snapshot it, patch it as a generic tree, snapshot the patched form, hand it
// to the client generator, and write the generated source. It runs once,
// synchronously; any stage failure fails the build.
type GenerateClientUseCase struct {
	fetcher   SchemaFetcher
	patcher   DocumentPatcher
	generator ClientGenerator
	sink      ArtifactSink
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewGenerateClientUseCase creates a new GenerateClientUseCase.
func NewGenerateClientUseCase(
	fetcher SchemaFetcher,
	patcher DocumentPatcher,
	generator ClientGenerator,
	sink ArtifactSink,
	logger *slog.Logger,
) *GenerateClientUseCase {
	return &GenerateClientUseCase{
		fetcher:   fetcher,
		patcher:   patcher,
		generator: generator,
		sink:      sink,
		tracer:    otel.Tracer("oasforge/generate_client"),
		logger:    logger.With("usecase", "GenerateClient"),
	}
}

// Execute runs the pipeline for one schema source and returns the paths of
// the artifacts it produced. On failure the returned error wraps one of the
// package sentinel errors; partial artifacts already written are left on disk
// for diagnosis.
func (uc *GenerateClientUseCase) Execute(ctx context.Context, cfg FetchConfig) (domain.Artifacts, error) {
	log := uc.logger.With(slog.String("source", cfg.Source))
	log.Info("Starting client generation build step")

	var artifacts domain.Artifacts

	// 1. Fetch the vendor schema. A single blocking call; no retry.
	ctx, span := uc.tracer.Start(ctx, "fetch_schema")
	doc, err := uc.fetcher.Fetch(ctx, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		span.End()
		log.Error("Failed to fetch schema", slog.Any("error", err))
		return artifacts, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	span.End()
	log.Info("Schema fetched", slog.String("kind", string(doc.Kind)), slog.Int("bytes", len(doc.RawData)))

	// 2. Snapshot the raw document verbatim before touching it.
	artifacts.RawSchemaPath, err = uc.sink.WriteRawSchema(doc.RawData)
	if err != nil {
		log.Error("Failed to write raw schema artifact", slog.Any("error", err))
		return artifacts, fmt.Errorf("%w: raw schema: %v", ErrWrite, err)
	}
	log.Debug("Raw schema written", slog.String("path", artifacts.RawSchemaPath))

	// 3. Decode into the generic tree the patch passes operate on.
	doc.Tree, err = decodeDocument(doc.RawData)
	if err != nil {
		log.Error("Failed to parse schema document", slog.Any("error", err))
		return artifacts, fmt.Errorf("%w: %v", ErrParse, err)
	}

	// 4. Patch. Mutates the tree in place; cannot fail.
	_, span = uc.tracer.Start(ctx, "patch_schema")
	uc.patcher.Patch(doc.Tree)
	span.End()
	log.Info("Schema patched")

	// 5. Snapshot the patched document pretty-printed so raw vs. patched can
	// be diffed by hand when the generator rejects it. MarshalIndent sorts
	// object keys, so identical input yields byte-identical output.
	patched, err := json.MarshalIndent(doc.Tree, "", "  ")
	if err != nil {
		log.Error("Failed to serialize patched schema", slog.Any("error", err))
		return artifacts, fmt.Errorf("%w: patched schema: %v", ErrWrite, err)
	}
	artifacts.PatchedSchemaPath, err = uc.sink.WritePatchedSchema(patched)
	if err != nil {
		log.Error("Failed to write patched schema artifact", slog.Any("error", err))
		return artifacts, fmt.Errorf("%w: patched schema: %v", ErrWrite, err)
	}
	log.Debug("Patched schema written", slog.String("path", artifacts.PatchedSchemaPath))

	// 6. Generate the client from the patched document.
	ctx, span = uc.tracer.Start(ctx, "generate_client")
	client, err := uc.generator.Generate(ctx, patched)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		span.End()
		if errors.Is(err, ErrSchemaModel) {
			// Expected failure mode whenever the vendor introduces a construct
			// the model cannot represent; point the human at the snapshot.
			log.Error("Patched schema does not fit the OpenAPI model",
				slog.Any("error", err),
				slog.String("patched_schema_path", artifacts.PatchedSchemaPath))
			return artifacts, fmt.Errorf("%w (patched schema saved at %s)", err, artifacts.PatchedSchemaPath)
		}
		log.Error("Client generation failed", slog.Any("error", err))
		return artifacts, err
	}
	span.End()
	log.Info("Client generated",
		slog.String("package", client.Package),
		slog.Int("operations", client.OperationCount))

	// 7. Write the generated source.
	artifacts.ClientSourcePath, err = uc.sink.WriteClientSource(client.Source)
	if err != nil {
		log.Error("Failed to write generated client", slog.Any("error", err))
		return artifacts, fmt.Errorf("%w: client source: %v", ErrWrite, err)
	}

	log.Info("Build step completed",
		slog.String("raw", artifacts.RawSchemaPath),
		slog.String("patched", artifacts.PatchedSchemaPath),
		slog.String("client", artifacts.ClientSourcePath))
	return artifacts, nil
}

// decodeDocument parses the fetched text into a generic tree. JSON first;
// vendors occasionally publish YAML, so fall back to it when JSON decoding
// fails. The root must be an object.
func decodeDocument(raw []byte) (map[string]any, error) {
	var tree map[string]any
	jsonErr := json.Unmarshal(raw, &tree)
	if jsonErr == nil {
		return tree, nil
	}
	if yamlErr := yaml.Unmarshal(raw, &tree); yamlErr == nil && tree != nil {
		return tree, nil
	}
	return nil, fmt.Errorf("document is not valid JSON or YAML: %v", jsonErr)
}
