package logging

import (
	"fmt"
	"io"

	"github.com/fyrsmithlabs/embedkit/internal/config"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	Level     zapcore.Level
	Format    string
	Output    OutputConfig
	Caller    CallerConfig
	Fields    map[string]string
	Redaction RedactionConfig
}

// OutputConfig controls where logs are written.
type OutputConfig struct {
	Stdout bool
	// Writer replaces os.Stdout for the Stdout output, e.g. os.Stderr in CLIs
	// that print results on stdout.
	Writer io.Writer
	OTEL   bool
}

// CallerConfig controls caller information in logs.
type CallerConfig struct {
	Enabled bool
	Skip    int
}

// RedactionConfig lists field names whose values are replaced before encoding.
type RedactionConfig struct {
	Enabled bool
	Fields  []string
}

// NewDefaultConfig returns config with production-ready defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Level:  zapcore.InfoLevel,
		Format: "json",
		Output: OutputConfig{
			Stdout: true,
		},
		Caller: CallerConfig{
			Enabled: true,
			Skip:    1,
		},
		Fields: map[string]string{
			"service": "embedkit",
		},
		Redaction: RedactionConfig{
			Enabled: true,
			Fields: []string{
				"api_key", "openai_key", "azure_key", "authorization",
				"token", "secret", "password", "credential",
			},
		},
	}
}

// ConfigFrom builds a logging config from the file/env configuration.
func ConfigFrom(cfg config.LoggingConfig) (*Config, error) {
	out := NewDefaultConfig()
	if cfg.Level != "" {
		lvl, err := LevelFromString(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		out.Level = lvl
	}
	if cfg.Format != "" {
		out.Format = cfg.Format
	}
	return out, out.Validate()
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("format must be 'json' or 'console', got %q", c.Format)
	}
	if !c.Output.Stdout && !c.Output.OTEL {
		return fmt.Errorf("at least one output must be enabled (stdout or otel)")
	}
	if c.Caller.Enabled && c.Caller.Skip < 0 {
		return fmt.Errorf("caller skip must be >= 0, got %d", c.Caller.Skip)
	}
	for k, v := range c.Fields {
		if k == "" {
			return fmt.Errorf("field key cannot be empty")
		}
		if v == "" {
			return fmt.Errorf("field %q has empty value", k)
		}
	}
	return nil
}
