package main

import (
	"github.com/spf13/cobra"

	"github.com/nautex-dev/nautex/internal/mcp"
	"github.com/nautex-dev/nautex/internal/observability"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve MCP tools over stdio",
		Long: `Run the MCP server on stdin/stdout. This is the command the IDE
launches via its mcp.json entry; it is not meant to be run by hand.

Stdout carries the MCP protocol, so all logging goes to stderr or the
configured log file. The server starts even when Nautex is not yet
configured: tools then answer with an error asking to run 'nautex setup'.`,
		Example: `  nautex mcp`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.FromContext(cmd.Context())

			svc := mcp.NewService(mcp.Options{Logger: logger})

			return svc.Serve(cmd.Context())
		},
	}
}
