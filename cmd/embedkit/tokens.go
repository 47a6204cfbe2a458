package main

import (
	"fmt"

	"github.com/fyrsmithlabs/embedkit/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newTokensCmd(root *rootOptions) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "tokens [text|-]",
		Short: "Count the tokens text occupies for a model",
		Long: `Count the tokens text occupies for a model, using the model's tiktoken
encoding (cl100k_base for unmapped models). Without --model the configured
embedding model is used.`,
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

			if model == "" {
				model = a.provider.Model()
			}
			n, err := a.chunker.CountTokens(ctx, text, model)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", n)
			if n > tokenizer.DefaultMaxTokens {
				cmd.PrintErrf("text exceeds %d tokens and will be truncated before embedding\n", tokenizer.DefaultMaxTokens)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "model whose tokenizer to use")
	return cmd
}
