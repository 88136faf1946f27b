package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leaselens/leaselens/internal/domain/lease"
)

func newAnalyzeCommand(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "analyze <lease-id>",
		Short: "Submit a lease's clauses for violation analysis",
		Long: `Submit a lease's clauses for violation analysis.

The input file is either a JSON array of {"text","section"} objects or plain
text, in which case paragraphs separated by blank lines become clauses.
Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(file)
			if err != nil {
				return err
			}
			clauses, err := parseClauses(data)
			if err != nil {
				return err
			}
			if len(clauses) == 0 {
				return fmt.Errorf("no clauses found in input")
			}

			api, err := opts.newAPIClient()
			if err != nil {
				return err
			}
			result, err := api.Analyze(cmd.Context(), args[0], clauses)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "clauses file (JSON array or plain text)")
	return cmd
}

// parseClauses accepts either a JSON array of clauses or plain text split on
// blank lines.
func parseClauses(data []byte) ([]lease.ExtractedClause, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var clauses []lease.ExtractedClause
		if err := json.Unmarshal(data, &clauses); err != nil {
			return nil, fmt.Errorf("parse clauses json: %w", err)
		}
		return clauses, nil
	}

	var clauses []lease.ExtractedClause
	for i, block := range strings.Split(trimmed, "\n\n") {
		text := strings.TrimSpace(block)
		if text == "" {
			continue
		}
		clauses = append(clauses, lease.ExtractedClause{
			Text:    text,
			Section: fmt.Sprintf("%d", i+1),
		})
	}
	return clauses, nil
}
