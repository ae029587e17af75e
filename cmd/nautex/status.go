package main

import (
	"github.com/spf13/cobra"

	"github.com/nautex-dev/nautex/internal/api"
	"github.com/nautex-dev/nautex/internal/config"
	"github.com/nautex-dev/nautex/internal/integration"
	"github.com/nautex-dev/nautex/internal/mcp"
	"github.com/nautex-dev/nautex/internal/output"
	"github.com/nautex-dev/nautex/internal/readiness"
)

// statusReport is the JSON shape of 'nautex status --json'.
type statusReport struct {
	Ready       bool              `json:"ready"`
	Message     string            `json:"message"`
	Config      *config.Summary   `json:"config,omitempty"`
	Network     *readiness.Result `json:"network,omitempty"`
	Auth        *readiness.Result `json:"auth,omitempty"`
	Account     *api.AccountInfo  `json:"account,omitempty"`
	Integration struct {
		Status string `json:"status"`
		Path   string `json:"path"`
	} `json:"integration"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connectivity and readiness",
		Long: `Run readiness checks and report the first thing that blocks work.

Checks performed:
  - Configuration presence and API token
  - Network reachability of the API host
  - Token authentication
  - Project and implementation plan selection
  - IDE integration entry`,
		Example: `  nautex status
  nautex status --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			report := gatherStatus(cmd)

			if out.JSON {
				return out.PrintJSON(report)
			}

			renderStatus(out, report)

			return nil
		},
	}
}

func gatherStatus(cmd *cobra.Command) statusReport {
	manager := integration.NewManager("", "")
	intStatus, intPath := manager.Check()

	in := readiness.Inputs{Integration: intStatus}
	report := statusReport{}
	report.Integration.Status = string(intStatus)
	report.Integration.Path = intPath

	snap, err := config.NewResolver("").Resolve()
	if err == nil && snap.HasToken() {
		in.ConfigLoaded = true
		in.Host = snap.APIHost
		in.ProjectSelected = snap.ProjectID != ""
		in.PlanSelected = snap.PlanID != ""

		summary := snap.Summary()
		report.Config = &summary

		client := mcp.DefaultClientFactory(snap)
		probe := readiness.NewProbe(client).Run(cmd.Context())
		in.Network = probe.Network
		in.Auth = probe.Auth
		report.Network = &probe.Network
		report.Auth = &probe.Auth
		report.Account = probe.Account
	}

	eval := readiness.Evaluate(in)
	report.Ready = eval.Ready
	report.Message = eval.Message

	return report
}

func renderStatus(out *output.Writer, report statusReport) {
	out.Println("Nautex Status")
	out.Println("=============")
	out.Println()

	check := func(ok bool, name, message string) {
		if ok {
			out.Success("%-16s%s", name, message)
		} else {
			out.Failure("%-16s%s", name, message)
		}
	}

	if report.Config == nil {
		check(false, "Configuration", "not found or missing API token")
	} else {
		check(true, "Configuration", report.Config.APIHost)
		check(true, "Token", "set")

		if report.Network != nil {
			msg := "reachable"
			if !report.Network.OK {
				msg = report.Network.Err
			}
			check(report.Network.OK, "Network", msg)
		}

		if report.Auth != nil {
			msg := "authenticated"
			if report.Account != nil && report.Account.ProfileEmail != "" {
				msg = report.Account.ProfileEmail
			}
			if !report.Auth.OK {
				msg = report.Auth.Err
			}
			check(report.Auth.OK, "Authentication", msg)
		}

		projectMsg := report.Config.ProjectID
		check(projectMsg != "", "Project", orNotSelected(projectMsg))

		planMsg := report.Config.PlanID
		check(planMsg != "", "Plan", orNotSelected(planMsg))
	}

	if report.Integration.Status == string(integration.StatusOK) {
		out.Success("%-16s%s", "Integration", report.Integration.Path)
	} else {
		out.Warning("%-16s%s", "Integration", report.Integration.Status)
	}

	out.Println()
	if report.Ready {
		out.Success("%s", report.Message)
	} else {
		out.Failure("%s", report.Message)
	}
}

func orNotSelected(value string) string {
	if value == "" {
		return "not selected"
	}

	return value
}
