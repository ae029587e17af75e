package main

import (
	"github.com/spf13/cobra"

	"github.com/nautex-dev/nautex/internal/config"
	clierrors "github.com/nautex-dev/nautex/internal/errors"
	"github.com/nautex-dev/nautex/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View and modify Nautex configuration settings.`,
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		Long: `Display the effective configuration after merging environment
variables, the .env file, and .nautex/config.json. The API token is
reported as a boolean, never printed.`,
		Example: `  nautex config show
  nautex config show --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			resolver := config.NewResolver("")

			snap, err := resolver.Resolve()
			if err != nil {
				return clierrors.ConfigFailed("load configuration", err)
			}

			summary := snap.Summary()

			if out.JSON {
				return out.PrintJSON(summary)
			}

			out.Print("%-24s%s\n", config.KeyAPIHost, summary.APIHost)
			out.Print("%-24s%v\n", "has_token", summary.HasToken)
			out.Print("%-24s%s\n", config.KeyAgentInstanceName, summary.AgentInstanceName)
			out.Print("%-24s%s\n", config.KeyProjectID, summary.ProjectID)
			out.Print("%-24s%s\n", config.KeyPlanID, summary.PlanID)
			out.Print("%-24s%v\n", config.KeyAPITestMode, summary.APITestMode)
			out.Println()
			out.Muted("File: %s", resolver.ConfigPath())

			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration key in .nautex/config.json. Environment
variables and the .env file still take precedence when resolving.`,
		Example: `  nautex config set project_id PROJ-42
  nautex config set api_host https://api.nautex.ai`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			key, value := args[0], args[1]

			resolver := config.NewResolver("")

			snap, err := resolver.Resolve()
			if err != nil {
				return clierrors.ConfigFailed("load configuration", err)
			}

			updated, err := config.Set(*snap, key, value)
			if err != nil {
				return clierrors.ConfigFailed("set config", err)
			}

			if err := resolver.Save(&updated); err != nil {
				return clierrors.ConfigFailed("save configuration", err)
			}

			if key == config.KeyAPIToken {
				out.Success("Set %s", key)
			} else {
				out.Success("Set %s = %s", key, value)
			}

			return nil
		},
	}
}
