package config

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// EnvPrefix prefixes every embedkit environment variable.
	EnvPrefix = "EMBEDKIT_"
)

// Vendor environment variables consulted for credentials that are not set
// in the config file or through EMBEDKIT_CREDENTIALS_*.
const (
	EnvOpenAIKey       = "OPENAI_API_KEY"
	EnvAzureKey        = "AZURE_OPENAI_KEY"
	EnvAzureEndpoint   = "AZURE_OPENAI_ENDPOINT"
	EnvAzureVersion    = "AZURE_OPENAI_VERSION"
	EnvAzureDeployment = "AZURE_OPENAI_EMBEDDING_DEPLOYMENT"
)

// Load loads configuration from a YAML file, then overrides with environment variables.
//
// Configuration precedence (highest to lowest):
//  1. EMBEDKIT_* environment variables (EMBEDKIT_EMBEDDING_MODEL -> embedding.model)
//  2. YAML config file at path (skipped when path is empty or the file does not exist)
//  3. Vendor environment variables for credentials (OPENAI_API_KEY, AZURE_OPENAI_*)
//  4. Hardcoded defaults
//
// The config file holds credentials, so it must be 0600 or 0400 and at most 1MB.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := loadFile(k, path); err != nil {
			return nil, err
		}
	}

	// EMBEDKIT_EMBEDDING_ENDPOINT_TYPE -> embedding.endpoint_type
	// Split on the first underscore after the prefix only (section.field_name).
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Embedding.EndpointType = NormalizeEndpointType(cfg.Embedding.EndpointType)
	applyVendorEnv(&cfg.Credentials)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	// Stat through the open descriptor to avoid a TOCTOU race.
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := validateConfigFileProperties(info); err != nil {
		return fmt.Errorf("config file validation failed: %w", err)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return nil
}

// validateConfigFileProperties checks file permissions and size.
func validateConfigFileProperties(info os.FileInfo) error {
	if runtime.GOOS != "windows" {
		perm := info.Mode().Perm()
		if perm != 0600 && perm != 0400 {
			return fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
		}
	}

	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	return nil
}

// applyVendorEnv fills unset credentials from the vendor environment variables.
func applyVendorEnv(c *Credentials) {
	if !c.OpenAIKey.IsSet() {
		c.OpenAIKey = Secret(os.Getenv(EnvOpenAIKey))
	}
	if !c.AzureKey.IsSet() {
		c.AzureKey = Secret(os.Getenv(EnvAzureKey))
	}
	if c.AzureEndpoint == "" {
		c.AzureEndpoint = os.Getenv(EnvAzureEndpoint)
	}
	if c.AzureVersion == "" {
		c.AzureVersion = os.Getenv(EnvAzureVersion)
	}
	if c.AzureEmbeddingDeployment == "" {
		c.AzureEmbeddingDeployment = os.Getenv(EnvAzureDeployment)
	}
}
