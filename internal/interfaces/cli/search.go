package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/leaselens/leaselens/internal/application/search"
)

func newSearchCommand(opts *rootOptions) *cobra.Command {
	var (
		leaseID  string
		language string
		filters  []string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search analyzed clauses with query expansion and hybrid ranking",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.newAPIClient()
			if err != nil {
				return err
			}

			q := search.Query{
				Query:    strings.Join(args, " "),
				LeaseID:  leaseID,
				UserID:   opts.UserID,
				Language: language,
			}
			if len(filters) > 0 {
				q.Filters = make(map[string]string, len(filters))
				for _, f := range filters {
					parts := strings.SplitN(f, "=", 2)
					if len(parts) == 2 {
						q.Filters[parts[0]] = parts[1]
					}
				}
			}

			resp, err := api.Search(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&leaseID, "lease", "", "restrict results to one lease")
	cmd.Flags().StringVar(&language, "language", "en", "query language for synonym expansion (en, es, fr, de)")
	cmd.Flags().StringSliceVar(&filters, "filter", nil, "field=value filters (severity, flagged, section)")
	return cmd
}
