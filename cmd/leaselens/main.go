// CLI client entry point for LeaseLens.
package main

import (
	"fmt"
	"os"

	"github.com/leaselens/leaselens/internal/interfaces/cli"
)

// version is injected via ldflags.
var version = "dev"

func main() {
	cli.Version = version
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
