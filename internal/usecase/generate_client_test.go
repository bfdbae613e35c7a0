package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oasforge/oasforge/internal/domain"
	"github.com/oasforge/oasforge/internal/usecase"
)

// MockSchemaFetcher is a mock implementation of the SchemaFetcher interface.
type MockSchemaFetcher struct {
	mock.Mock
}

func (m *MockSchemaFetcher) Fetch(ctx context.Context, cfg usecase.FetchConfig) (domain.SchemaDocument, error) {
	args := m.Called(ctx, cfg)
	return args.Get(0).(domain.SchemaDocument), args.Error(1)
}

// MockDocumentPatcher is a mock implementation of the DocumentPatcher interface.
type MockDocumentPatcher struct {
	mock.Mock
}

func (m *MockDocumentPatcher) Patch(doc map[string]any) {
	m.Called(doc)
}

// MockClientGenerator is a mock implementation of the ClientGenerator interface.
type MockClientGenerator struct {
	mock.Mock
}

func (m *MockClientGenerator) Generate(ctx context.Context, patched []byte) (domain.GeneratedClient, error) {
	args := m.Called(ctx, patched)
	return args.Get(0).(domain.GeneratedClient), args.Error(1)
}

// MockArtifactSink is a mock implementation of the ArtifactSink interface.
type MockArtifactSink struct {
	mock.Mock
}

func (m *MockArtifactSink) WriteRawSchema(data []byte) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}

func (m *MockArtifactSink) WritePatchedSchema(data []byte) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}

func (m *MockArtifactSink) WriteClientSource(data []byte) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}

func TestGenerateClientUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := usecase.FetchConfig{Source: "https://example.com/openapi.json"}
	rawDoc := domain.SchemaDocument{
		Source:  cfg.Source,
		Kind:    domain.SourceKindHTTP,
		RawData: []byte(`{"paths": {}}`),
	}
	generated := domain.GeneratedClient{Package: "apiclient", Source: []byte("package apiclient\n"), OperationCount: 4}

	fetchErr := errors.New("connection refused")
	diskFull := errors.New("disk full")

	tests := []struct {
		name       string
		mockSetup  func(*MockSchemaFetcher, *MockDocumentPatcher, *MockClientGenerator, *MockArtifactSink)
		wantErrIs  error
		wantErrSub string
	}{
		{
			name: "Success - full pipeline",
			mockSetup: func(fetcher *MockSchemaFetcher, patcher *MockDocumentPatcher, generator *MockClientGenerator, sink *MockArtifactSink) {
				fetcher.On("Fetch", mock.Anything, cfg).Return(rawDoc, nil).Once()
				sink.On("WriteRawSchema", rawDoc.RawData).Return("/out/openapi.json", nil).Once()
				patcher.On("Patch", mock.Anything).Once()
				sink.On("WritePatchedSchema", mock.Anything).Return("/out/openapi_patched.json", nil).Once()
				generator.On("Generate", mock.Anything, mock.Anything).Return(generated, nil).Once()
				sink.On("WriteClientSource", generated.Source).Return("/out/client_gen.go", nil).Once()
			},
		},
		{
			name: "Failure - fetch error",
			mockSetup: func(fetcher *MockSchemaFetcher, patcher *MockDocumentPatcher, generator *MockClientGenerator, sink *MockArtifactSink) {
				fetcher.On("Fetch", mock.Anything, cfg).Return(domain.SchemaDocument{}, fetchErr).Once()
			},
			wantErrIs:  usecase.ErrFetch,
			wantErrSub: "connection refused",
		},
		{
			name: "Failure - raw artifact write error",
			mockSetup: func(fetcher *MockSchemaFetcher, patcher *MockDocumentPatcher, generator *MockClientGenerator, sink *MockArtifactSink) {
				fetcher.On("Fetch", mock.Anything, cfg).Return(rawDoc, nil).Once()
				sink.On("WriteRawSchema", rawDoc.RawData).Return("", diskFull).Once()
			},
			wantErrIs: usecase.ErrWrite,
		},
		{
			name: "Failure - unparseable document",
			mockSetup: func(fetcher *MockSchemaFetcher, patcher *MockDocumentPatcher, generator *MockClientGenerator, sink *MockArtifactSink) {
				garbage := rawDoc
				garbage.RawData = []byte("{invalid")
				fetcher.On("Fetch", mock.Anything, cfg).Return(garbage, nil).Once()
				sink.On("WriteRawSchema", garbage.RawData).Return("/out/openapi.json", nil).Once()
			},
			wantErrIs: usecase.ErrParse,
		},
		{
			name: "Failure - patched artifact write error",
			mockSetup: func(fetcher *MockSchemaFetcher, patcher *MockDocumentPatcher, generator *MockClientGenerator, sink *MockArtifactSink) {
				fetcher.On("Fetch", mock.Anything, cfg).Return(rawDoc, nil).Once()
				sink.On("WriteRawSchema", rawDoc.RawData).Return("/out/openapi.json", nil).Once()
				patcher.On("Patch", mock.Anything).Once()
				sink.On("WritePatchedSchema", mock.Anything).Return("", diskFull).Once()
			},
			wantErrIs: usecase.ErrWrite,
		},
		{
			name: "Failure - schema model mismatch names patched artifact",
			mockSetup: func(fetcher *MockSchemaFetcher, patcher *MockDocumentPatcher, generator *MockClientGenerator, sink *MockArtifactSink) {
				fetcher.On("Fetch", mock.Anything, cfg).Return(rawDoc, nil).Once()
				sink.On("WriteRawSchema", rawDoc.RawData).Return("/out/openapi.json", nil).Once()
				patcher.On("Patch", mock.Anything).Once()
				sink.On("WritePatchedSchema", mock.Anything).Return("/out/openapi_patched.json", nil).Once()
				modelErr := fmt.Errorf("%w: cannot unmarshal paths", usecase.ErrSchemaModel)
				generator.On("Generate", mock.Anything, mock.Anything).Return(domain.GeneratedClient{}, modelErr).Once()
			},
			wantErrIs:  usecase.ErrSchemaModel,
			wantErrSub: "/out/openapi_patched.json",
		},
		{
			name: "Failure - generator rejection",
			mockSetup: func(fetcher *MockSchemaFetcher, patcher *MockDocumentPatcher, generator *MockClientGenerator, sink *MockArtifactSink) {
				fetcher.On("Fetch", mock.Anything, cfg).Return(rawDoc, nil).Once()
				sink.On("WriteRawSchema", rawDoc.RawData).Return("/out/openapi.json", nil).Once()
				patcher.On("Patch", mock.Anything).Once()
				sink.On("WritePatchedSchema", mock.Anything).Return("/out/openapi_patched.json", nil).Once()
				genErr := fmt.Errorf("%w: duplicate method name", usecase.ErrGenerate)
				generator.On("Generate", mock.Anything, mock.Anything).Return(domain.GeneratedClient{}, genErr).Once()
			},
			wantErrIs: usecase.ErrGenerate,
		},
		{
			name: "Failure - client source write error",
			mockSetup: func(fetcher *MockSchemaFetcher, patcher *MockDocumentPatcher, generator *MockClientGenerator, sink *MockArtifactSink) {
				fetcher.On("Fetch", mock.Anything, cfg).Return(rawDoc, nil).Once()
				sink.On("WriteRawSchema", rawDoc.RawData).Return("/out/openapi.json", nil).Once()
				patcher.On("Patch", mock.Anything).Once()
				sink.On("WritePatchedSchema", mock.Anything).Return("/out/openapi_patched.json", nil).Once()
				generator.On("Generate", mock.Anything, mock.Anything).Return(generated, nil).Once()
				sink.On("WriteClientSource", generated.Source).Return("", diskFull).Once()
			},
			wantErrIs: usecase.ErrWrite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := new(MockSchemaFetcher)
			patcher := new(MockDocumentPatcher)
			generator := new(MockClientGenerator)
			sink := new(MockArtifactSink)
			tt.mockSetup(fetcher, patcher, generator, sink)

			uc := usecase.NewGenerateClientUseCase(fetcher, patcher, generator, sink, logger)
			artifacts, err := uc.Execute(ctx, cfg)

			if tt.wantErrIs != nil {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErrIs)
				if tt.wantErrSub != "" {
					assert.Contains(t, err.Error(), tt.wantErrSub)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "/out/openapi.json", artifacts.RawSchemaPath)
				assert.Equal(t, "/out/openapi_patched.json", artifacts.PatchedSchemaPath)
				assert.Equal(t, "/out/client_gen.go", artifacts.ClientSourcePath)
			}

			fetcher.AssertExpectations(t)
			patcher.AssertExpectations(t)
			generator.AssertExpectations(t)
			sink.AssertExpectations(t)
		})
	}
}

func TestGenerateClientUseCase_AcceptsYAMLDocuments(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := usecase.FetchConfig{Source: "https://example.com/openapi.yaml"}
	yamlDoc := domain.SchemaDocument{
		Source:  cfg.Source,
		Kind:    domain.SourceKindHTTP,
		RawData: []byte("openapi: 3.0.0\npaths:\n  /zones:\n    get: {}\n"),
	}

	fetcher := new(MockSchemaFetcher)
	patcher := new(MockDocumentPatcher)
	generator := new(MockClientGenerator)
	sink := new(MockArtifactSink)

	fetcher.On("Fetch", mock.Anything, cfg).Return(yamlDoc, nil).Once()
	sink.On("WriteRawSchema", yamlDoc.RawData).Return("/out/openapi.json", nil).Once()
	var patchedTree map[string]any
	patcher.On("Patch", mock.Anything).Run(func(args mock.Arguments) {
		patchedTree = args.Get(0).(map[string]any)
	}).Once()
	sink.On("WritePatchedSchema", mock.Anything).Return("/out/openapi_patched.json", nil).Once()
	generator.On("Generate", mock.Anything, mock.Anything).Return(domain.GeneratedClient{Source: []byte("x")}, nil).Once()
	sink.On("WriteClientSource", mock.Anything).Return("/out/client_gen.go", nil).Once()

	uc := usecase.NewGenerateClientUseCase(fetcher, patcher, generator, sink, logger)
	_, err := uc.Execute(ctx, cfg)

	require.NoError(t, err)
	require.NotNil(t, patchedTree)
	assert.Contains(t, patchedTree, "paths")
	fetcher.AssertExpectations(t)
}
