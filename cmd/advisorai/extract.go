package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/advisor-ai/internal/action"
)

func newExtractCommand() *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the email action from an assistant message",
		Long: `extract reads an assistant message from --text or standard input and
prints the display text and email action found in it as JSON.`,
		Example: `  advisorai extract --text '[EMAIL:advisor@uni.edu] Reach out.'
  echo '<a href="mailto:a@b.edu">Email</a>' | advisorai extract`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content := text
			if !cmd.Flags().Changed("text") {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading message: %w", err)
				}
				content = strings.TrimSuffix(string(data), "\n")
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(action.Extract(content))
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "message text (default: read standard input)")
	return cmd
}
