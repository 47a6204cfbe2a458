package main

import (
	"encoding/json"
	"fmt"

	"github.com/fyrsmithlabs/embedkit/internal/embeddings"
	"github.com/spf13/cobra"
)

// embedOutput is the JSON printed by the embed command.
type embedOutput struct {
	EndpointType string      `json:"endpoint_type"`
	Model        string      `json:"model"`
	Dimension    int         `json:"dimension"`
	Padded       bool        `json:"padded"`
	Vectors      [][]float32 `json:"vectors"`
}

func newEmbedCmd(root *rootOptions) *cobra.Command {
	var (
		pad   bool
		query bool
	)

	cmd := &cobra.Command{
		Use:   "embed [text|-]",
		Short: "Embed text and print the vectors as JSON",
		Long: `Embed text with the configured backend and print the result as JSON.

Text longer than the model's token budget is truncated first. With --pad,
vectors are zero-padded to the vector store width. With --query, the text
is embedded as a search query.

Examples:
  embedkit embed "what is an embedding?"
  embedkit embed --query --pad "nearest neighbours"
  echo "from stdin" | embedkit embed -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			var vectors [][]float32
			switch {
			case query && pad:
				vec, err := embeddings.QueryEmbedding(ctx, a.provider, text)
				if err != nil {
					return err
				}
				vectors = [][]float32{vec}
			case query:
				vec, err := a.provider.EmbedQuery(ctx, text)
				if err != nil {
					return err
				}
				vectors = [][]float32{vec}
			case pad:
				if vectors, err = embeddings.EmbedForStorage(ctx, a.provider, a.chunker, text); err != nil {
					return err
				}
			default:
				segments := a.chunker.FitToBudget(ctx, text, a.provider.Model())
				if vectors, err = a.provider.EmbedMany(ctx, segments); err != nil {
					return err
				}
			}

			out := embedOutput{
				EndpointType: string(a.provider.Kind()),
				Model:        a.provider.Model(),
				Padded:       pad,
				Vectors:      vectors,
			}
			if len(vectors) > 0 {
				out.Dimension = len(vectors[0])
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if err := enc.Encode(out); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pad, "pad", false, fmt.Sprintf("zero-pad vectors to %d dimensions", embeddings.MaxEmbeddingDim))
	cmd.Flags().BoolVar(&query, "query", false, "embed the text as a search query")
	return cmd
}
