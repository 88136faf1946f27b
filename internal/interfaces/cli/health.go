package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the server's readiness and component health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := opts.newAPIClient()
			if err != nil {
				return err
			}
			status, err := api.Health(cmd.Context())
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), status); err != nil {
				return err
			}
			if !status.Ready() {
				return fmt.Errorf("server is not ready")
			}
			return nil
		},
	}
	return cmd
}
