package main

import (
	"github.com/spf13/cobra"

	"github.com/nautex-dev/nautex/internal/output"
	"github.com/nautex-dev/nautex/internal/wizard"
)

func newSetupCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Configure token, project and plan",
		Long: `Configure Nautex with a guided setup flow.

The flow will:
  1. Prompt for your API token and verify it
  2. Let you pick a project
  3. Let you pick an implementation plan
  4. Offer to install the IDE integration

If a token is already configured, use --force to replace it.`,
		Example: `  nautex setup`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			w := wizard.New(out, force)

			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace the existing token without prompting")

	return cmd
}
