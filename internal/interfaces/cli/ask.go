package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCommand(opts *rootOptions) *cobra.Command {
	var leaseID string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about an analyzed lease",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if leaseID == "" {
				return fmt.Errorf("--lease is required")
			}
			api, err := opts.newAPIClient()
			if err != nil {
				return err
			}
			answer, err := api.Ask(cmd.Context(), leaseID, opts.UserID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer.Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&leaseID, "lease", "", "lease id to ask about")
	return cmd
}

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <lease-id>",
		Short: "Show the conversation history for a lease",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.newAPIClient()
			if err != nil {
				return err
			}
			conv, err := api.History(cmd.Context(), args[0], opts.UserID)
			if err != nil {
				return err
			}
			for _, turn := range conv.Turns {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", turn.Role, turn.Content)
			}
			return nil
		},
	}
	return cmd
}
