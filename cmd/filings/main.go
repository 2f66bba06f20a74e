// Command filings answers questions about company filings from the terminal,
// over HTTP or as an MCP server.
package main

import (
	"os"

	"github.com/custodia-labs/filings-cli/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
