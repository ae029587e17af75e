package main

import (
	"github.com/spf13/cobra"

	clierrors "github.com/nautex-dev/nautex/internal/errors"
	"github.com/nautex-dev/nautex/internal/integration"
	"github.com/nautex-dev/nautex/internal/output"
)

func newIntegrationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integration",
		Short: "Manage the IDE MCP integration",
		Long: `Inspect and install the mcp.json entry that tells the IDE how to
launch the nautex MCP server.`,
	}

	cmd.AddCommand(newIntegrationInstallCmd())
	cmd.AddCommand(newIntegrationStatusCmd())

	return cmd
}

func newIntegrationInstallCmd() *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Write the MCP server entry",
		Long: `Add a nautex entry to the IDE's mcp.json, preserving any other
registered servers. By default the project-level ./.cursor/mcp.json is
written; use --global for the user-level file.`,
		Example: `  nautex integration install
  nautex integration install --global`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			manager := integration.NewManager("", "")

			loc := integration.LocationLocal
			if global {
				loc = integration.LocationGlobal
			}

			path, err := manager.Install(loc)
			if err != nil {
				return clierrors.IntegrationWriteFailed(path, err)
			}

			out.Success("Integration written to %s", path)
			out.Info("Restart your IDE so it picks up the new MCP server")

			return nil
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Write the user-level file instead of the project-level one")

	return cmd
}

// integrationStatus is the JSON shape of 'nautex integration status --json'.
type integrationStatus struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

func newIntegrationStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report the integration state",
		Long: `Check whether the IDE's mcp.json invokes this CLI. The project-level
file shadows the user-level one.`,
		Example: `  nautex integration status`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			manager := integration.NewManager("", "")
			status, path := manager.Check()

			if out.JSON {
				return out.PrintJSON(integrationStatus{Status: string(status), Path: path})
			}

			switch status {
			case integration.StatusOK:
				out.Success("Integration installed: %s", path)
			case integration.StatusMisconfigured:
				out.Warning("Integration file exists but does not invoke nautex: %s", path)
				out.Info("Run 'nautex integration install' to fix it")
			default:
				out.Failure("Integration not installed (looked at %s)", path)
				out.Info("Run 'nautex integration install' to create it")
			}

			return nil
		},
	}
}
