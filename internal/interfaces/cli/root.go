// Package cli implements the leaselens command-line client.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/leaselens/leaselens/pkg/client"
)

// Version is injected at build time via ldflags.
var Version = "dev"

// rootOptions holds the global flags shared by every subcommand.
type rootOptions struct {
	ServerAddr string
	Timeout    time.Duration
	UserID     string
}

// newAPIClient builds the SDK client from the global flags.
func (o *rootOptions) newAPIClient() (*client.Client, error) {
	return client.NewClient(o.ServerAddr, client.WithTimeout(o.Timeout))
}

// NewRootCommand assembles the full command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "leaselens",
		Short:         "Analyze residential leases for NYC housing-law violations",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ServerAddr, "server", "http://localhost:8080", "LeaseLens server address")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "request timeout")
	cmd.PersistentFlags().StringVar(&opts.UserID, "user", "cli", "user id for conversations and search preferences")

	cmd.AddCommand(
		newAnalyzeCommand(opts),
		newSearchCommand(opts),
		newAskCommand(opts),
		newHistoryCommand(opts),
		newHealthCommand(opts),
	)
	return cmd
}

// Execute runs the CLI and returns the first command error.
func Execute() error {
	return NewRootCommand().Execute()
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readInput returns the content of path, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
