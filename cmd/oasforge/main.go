package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/oasforge/oasforge/configs"
	"github.com/oasforge/oasforge/internal/adapter/outbound/buildsink"
	"github.com/oasforge/oasforge/internal/adapter/outbound/codegen"
	"github.com/oasforge/oasforge/internal/adapter/outbound/fetch"
	"github.com/oasforge/oasforge/internal/patch"
	"github.com/oasforge/oasforge/internal/usecase"
)

func main() {
	// === Command Line Flags ===
	var (
		srcFlag = flag.String("src", "", "Schema source: URL, file path, or github://owner/repo/path[@ref] (overrides config)")
		outFlag = flag.String("out", "", "Build output directory (overrides config)")
		pkgFlag = flag.String("package", "", "Package name for the generated client (overrides config)")
	)
	flag.Parse()

	ctx := context.Background()

	// === Configuration ===
	cfg, err := configs.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *srcFlag != "" {
		cfg.Schema.URL = *srcFlag
	}
	if *outFlag != "" {
		cfg.OutDir = *outFlag
	}
	if *pkgFlag != "" {
		cfg.Package = *pkgFlag
	}
	if cfg.Schema.URL == "" {
		fmt.Fprintln(os.Stderr, "No schema source configured: set -src, OASFORGE_SCHEMA_URL, or schema.url in the config file")
		os.Exit(1)
	}

	// === Logging ===
	logLevel := cfg.ParsedLogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	logger.Info("Logger initialized.", slog.String("level", logLevel.String()))

	// === OpenTelemetry Initialization ===
	shutdownOtel, err := initOtelProvider(cfg)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry.", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownOtel(context.Background()); err != nil {
			logger.Error("Failed to shutdown OpenTelemetry TracerProvider.", slog.Any("error", err))
		}
	}()

	// === Dependency Injection ===
	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}

	fetcher := fetch.New(httpClient, logger)
	patcher := patch.New(logger)
	generator := codegen.New(cfg.Package, logger)
	sink, err := buildsink.New(cfg.OutDir, logger)
	if err != nil {
		logger.Error("Failed to prepare build output directory.", slog.Any("error", err))
		os.Exit(1)
	}

	uc := usecase.NewGenerateClientUseCase(fetcher, patcher, generator, sink, logger)

	// === Build Step ===
	// One synchronous pass; any failure fails the build.
	artifacts, err := uc.Execute(ctx, usecase.FetchConfig{
		Source:  cfg.Schema.URL,
		Headers: cfg.Schema.Headers,
	})
	if err != nil {
		logger.Error("Build step failed.", slog.Any("error", err))
		if err := shutdownOtel(context.Background()); err != nil {
			logger.Error("Failed to shutdown OpenTelemetry TracerProvider.", slog.Any("error", err))
		}
		os.Exit(1)
	}

	logger.Info("Client generation succeeded.",
		slog.String("raw_schema", artifacts.RawSchemaPath),
		slog.String("patched_schema", artifacts.PatchedSchemaPath),
		slog.String("client_source", artifacts.ClientSourcePath))
}

// initOtelProvider initializes the OpenTelemetry SDK and sets up the OTLP
// trace exporter. It returns a shutdown function to be called on exit.
func initOtelProvider(cfg *configs.Config) (func(context.Context) error, error) {
	ctx := context.Background()

	if cfg.OtelExporterOtlpEndpoint == "" {
		slog.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, OpenTelemetry tracing disabled.")
		return func(context.Context) error { return nil }, nil
	}

	slog.Info("Initializing OTLP exporter.", slog.String("endpoint", cfg.OtelExporterOtlpEndpoint))

	grpcOpts := []grpc.DialOption{}
	if cfg.OtelExporterOtlpInsecure {
		grpcOpts = append(grpcOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		slog.Warn("Using insecure connection for OTLP exporter.")
	}

	conn, err := grpc.NewClient(cfg.OtelExporterOtlpEndpoint, grpcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to OTLP endpoint: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("oasforge"),
		),
	)
	if err != nil {
		_ = traceExporter.Shutdown(ctx)
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(r),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) error {
		providerErr := tp.Shutdown(ctx)
		connErr := conn.Close()
		return errors.Join(providerErr, connErr)
	}, nil
}
