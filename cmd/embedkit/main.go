// Package main implements the embedkit CLI for embedding text from the shell.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fyrsmithlabs/embedkit/internal/config"
	"github.com/fyrsmithlabs/embedkit/internal/embeddings"
	"github.com/fyrsmithlabs/embedkit/internal/logging"
	"github.com/fyrsmithlabs/embedkit/internal/telemetry"
	"github.com/fyrsmithlabs/embedkit/internal/tokenizer"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	user       string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "embedkit",
		Short: "Embed text with OpenAI, Azure, a self-hosted endpoint or a local model",
		Long: `embedkit turns text into embedding vectors using the backend selected in
its configuration file (or EMBEDKIT_* environment variables).

Examples:
  # Embed a sentence with the configured backend
  embedkit embed "the quick brown fox"

  # Embed stdin, padded to the vector store width
  cat notes.txt | embedkit embed --pad -

  # Count tokens for a model
  embedkit tokens --model text-embedding-ada-002 "hello world"`,
		Version:      version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath(), "path to config file")
	root.PersistentFlags().StringVar(&opts.user, "user", "", "user UUID to tag embedding requests with")

	root.AddCommand(newEmbedCmd(opts))
	root.AddCommand(newTokensCmd(opts))
	return root
}

// defaultConfigPath returns ~/.config/embedkit/config.yaml.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "embedkit", "config.yaml")
}

// app holds everything a subcommand needs, built from configuration.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	telemetry *telemetry.Telemetry
	provider  embeddings.Provider
	chunker   *tokenizer.Chunker
}

// newApp loads configuration and builds the logger, telemetry, tokenizer and provider.
// Logs go to logOut so that results on stdout stay machine-readable.
func newApp(ctx context.Context, opts *rootOptions, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	logCfg, err := logging.ConfigFrom(cfg.Logging)
	if err != nil {
		return nil, err
	}
	logCfg.Output.Writer = logOut
	logger, err := logging.NewLogger(logCfg, nil)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	tel, err := telemetry.New(ctx, cfg.Telemetry, logger)
	if err != nil {
		return nil, err
	}

	providerOpts := []embeddings.Option{
		embeddings.WithLogger(logger),
		embeddings.WithMetrics(embeddings.NewMetricsWithMeter(tel.Meter("embedkit"), logger)),
		embeddings.WithTracer(tel.Tracer("embedkit")),
		embeddings.WithTimeout(cfg.HTTP.Timeout.Duration()),
		embeddings.WithCacheDir(cfg.Local.CacheDir),
	}
	if opts.user != "" {
		id, err := uuid.Parse(opts.user)
		if err != nil {
			return nil, fmt.Errorf("invalid --user: %w", err)
		}
		providerOpts = append(providerOpts, embeddings.WithUser(id))
	}

	provider, err := embeddings.NewProvider(embeddings.ConfigFrom(cfg.Embedding), cfg.Credentials, providerOpts...)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("creating embedding provider: %w", err)
	}

	logger.Debug(ctx, "embedding provider ready",
		zap.String("endpoint_type", string(provider.Kind())),
		zap.String("model", provider.Model()))

	return &app{
		cfg:       cfg,
		logger:    logger,
		telemetry: tel,
		provider:  provider,
		chunker:   tokenizer.NewChunker(tokenizer.NewResolver(logger), logger),
	}, nil
}

func (a *app) Close(ctx context.Context) error {
	err := errors.Join(a.provider.Close(), a.telemetry.Shutdown(ctx))
	_ = a.logger.Sync()
	return err
}

// readInput returns the text argument, or stdin when it is absent or "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return "", errors.New("no input text")
	}
	return text, nil
}
