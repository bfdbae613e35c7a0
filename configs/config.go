package configs

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// SchemaSource describes where the vendor schema lives and any request
// headers the endpoint needs (private gateways, tokens).
type SchemaSource struct {
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// FileConfig is the structure loaded from the YAML configuration file.
type FileConfig struct {
	Schema  SchemaSource `yaml:"schema"`
	OutDir  string       `yaml:"out_dir"`
	Package string       `yaml:"package"`
}

// Config holds the final application configuration, merged from the config
// file and environment variables. Environment variables use the prefix
// "OASFORGE_" and take precedence over file settings.
type Config struct {
	// Config file path (loaded first from env; optional).
	ConfigFilePath string `envconfig:"CONFIG_FILE"`

	// Schema is file-loaded; OASFORGE_SCHEMA_URL overrides its URL.
	Schema    Schema `ignored:"true"`
	SchemaURL string `envconfig:"SCHEMA_URL"`

	OutDir                   string        `envconfig:"OUT_DIR"`
	Package                  string        `envconfig:"PACKAGE"`
	HTTPClientTimeout        time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"30s"`
	OtelExporterOtlpEndpoint string        `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpInsecure bool          `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	LogLevel                 string        `envconfig:"LOG_LEVEL" default:"info"`
}

// Schema is the merged schema source the pipeline fetches.
type Schema struct {
	URL     string
	Headers map[string]string
}

// ParsedLogLevel returns the slog.Level for the configured LogLevel string.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		fallthrough
	default:
		return slog.LevelInfo
	}
}

// Load reads configuration from environment variables (first, to get the
// config file path), then from the YAML file when one is specified, with
// environment values winning over file values.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("oasforge", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	fileCfg := FileConfig{}
	if cfg.ConfigFilePath != "" {
		yamlFile, err := os.ReadFile(cfg.ConfigFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", cfg.ConfigFilePath, err)
		}
		if err := yaml.Unmarshal(yamlFile, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file '%s': %w", cfg.ConfigFilePath, err)
		}
		slog.Info("Loaded configuration from file.", "path", cfg.ConfigFilePath)
	}

	// Merge: env over file over defaults.
	cfg.Schema = Schema{URL: fileCfg.Schema.URL, Headers: fileCfg.Schema.Headers}
	if cfg.SchemaURL != "" {
		cfg.Schema.URL = cfg.SchemaURL
	}
	if cfg.OutDir == "" {
		cfg.OutDir = fileCfg.OutDir
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "gen"
	}
	if cfg.Package == "" {
		cfg.Package = fileCfg.Package
	}
	if cfg.Package == "" {
		cfg.Package = "apiclient"
	}

	return &cfg, nil
}
