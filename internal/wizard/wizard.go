// Package wizard provides the guided setup flow for the Nautex CLI.
//
// The wizard walks through first-time configuration:
//  1. Welcome message
//  2. API token input and verification
//  3. Agent instance name
//  4. Project selection
//  5. Implementation plan selection
//  6. Optional IDE integration install
package wizard

import (
	"context"
	"fmt"

	"github.com/nautex-dev/nautex/internal/api"
	"github.com/nautex-dev/nautex/internal/config"
	clierrors "github.com/nautex-dev/nautex/internal/errors"
	"github.com/nautex-dev/nautex/internal/integration"
	"github.com/nautex-dev/nautex/internal/output"
	"github.com/nautex-dev/nautex/internal/prompt"
)

// ClientFactory builds the API client used to verify the token and list
// projects and plans. Tests substitute fakes here.
type ClientFactory func(host, token string) api.Service

// Wizard handles the setup flow.
type Wizard struct {
	out       *output.Writer
	prompter  *prompt.Prompter
	resolver  *config.Resolver
	manager   *integration.Manager
	newClient ClientFactory
	force     bool
}

// New creates a setup wizard rooted at the current directory.
func New(out *output.Writer, force bool) *Wizard {
	return &Wizard{
		out:       out,
		prompter:  prompt.New(out),
		resolver:  config.NewResolver(""),
		manager:   integration.NewManager("", ""),
		newClient: func(host, token string) api.Service { return api.New(host, token) },
		force:     force,
	}
}

// Run executes the setup wizard.
func (w *Wizard) Run(ctx context.Context) error {
	w.out.Println("Nautex Setup")
	w.out.Println("============")
	w.out.Println()
	w.out.Println("Nautex connects your IDE coding agent to the Nautex.ai task")
	w.out.Println("platform over MCP.")
	w.out.Println()

	if !w.prompter.CanPrompt() {
		return clierrors.CannotPrompt("NAUTEX_API_TOKEN")
	}

	snap, err := w.resolver.Resolve()
	if err != nil {
		w.out.Warning("Existing configuration is invalid and will be replaced")
		w.out.Muted("%s", err.Error())
		snap = &config.Snapshot{APIHost: config.DefaultAPIHost}
	}

	token := snap.APIToken
	if token != "" && !w.force {
		keep, confirmErr := w.prompter.Confirm("An API token is already configured. Keep it?", true)
		if confirmErr != nil {
			return confirmErr
		}
		if !keep {
			token = ""
		}
	} else if w.force {
		token = ""
	}

	// Step 1: token
	if token == "" {
		w.out.Println("Step 1: Authentication")
		w.out.Println("----------------------")
		w.out.Println("Enter your Nautex API token.")
		w.out.Muted("Create one at nautex.ai under account settings.")
		w.out.Println()

		token, err = w.prompter.Token("API Token")
		if err != nil {
			return fmt.Errorf("failed to read API token: %w", err)
		}

		if token == "" {
			return clierrors.TokenEmpty()
		}
	}

	w.out.Println()
	spin := w.out.Spinner("Verifying API token")
	spin.Start()

	client := w.newClient(snap.APIHost, token)

	account, err := client.VerifyToken(ctx, token)
	if err != nil {
		spin.StopWithFailure("Token rejected")
		return clierrors.TokenRejected(err)
	}

	spin.StopWithSuccess("Authenticated")
	if account != nil && account.ProfileEmail != "" {
		w.out.Print("Account: %s\n", account.ProfileEmail)
	}

	// Step 2: agent name
	w.out.Println()
	w.out.Println("Step 2: Agent Name")
	w.out.Println("------------------")
	w.out.Muted("A label identifying this CLI instance on the platform.")

	defaultName := snap.AgentInstanceName
	if defaultName == "" {
		defaultName = "my-dev-agent"
	}

	name, err := w.prompter.Line(fmt.Sprintf("Agent instance name [%s]", defaultName))
	if err != nil {
		return fmt.Errorf("failed to read agent name: %w", err)
	}
	if name == "" {
		name = defaultName
	}

	snap.AgentInstanceName = name

	// Persist the token before the selection steps so it survives a cancel.
	snap.APIToken = token
	if saveErr := w.resolver.Save(snap); saveErr != nil {
		return clierrors.ConfigFailed("save configuration", saveErr)
	}

	// Step 3: project
	w.out.Println()
	w.out.Println("Step 3: Select Project")
	w.out.Println("----------------------")

	spin = w.out.Spinner("Fetching projects")
	spin.Start()

	projects, err := client.ListProjects(ctx)
	if err != nil {
		spin.StopWithFailure("Failed to fetch projects")
		return clierrors.APICallFailed("list projects", err)
	}

	spin.Stop()

	if len(projects) == 0 {
		return clierrors.NoProjects()
	}

	project, err := w.prompter.SelectProject(projects)
	if err != nil {
		return fmt.Errorf("failed to select project: %w", err)
	}

	snap.ProjectID = project.ProjectID

	// Step 4: implementation plan
	w.out.Println()
	w.out.Println("Step 4: Select Implementation Plan")
	w.out.Println("----------------------------------")

	spin = w.out.Spinner("Fetching plans")
	spin.Start()

	plans, err := client.ListPlans(ctx, project.ProjectID)
	if err != nil {
		spin.StopWithFailure("Failed to fetch plans")
		return clierrors.APICallFailed("list plans", err)
	}

	spin.Stop()

	if len(plans) == 0 {
		return clierrors.NoPlansForProject(project.ProjectID)
	}

	plan, err := w.prompter.SelectPlan(plans)
	if err != nil {
		return fmt.Errorf("failed to select plan: %w", err)
	}

	snap.PlanID = plan.PlanID

	if err := w.resolver.Save(snap); err != nil {
		return clierrors.ConfigFailed("save configuration", err)
	}

	w.out.Success("Configuration saved to %s", w.resolver.ConfigPath())

	// Step 5: IDE integration
	if status, _ := w.manager.Check(); status != integration.StatusOK {
		w.out.Println()

		install, confirmErr := w.prompter.Confirm("Install the Cursor MCP integration now?", true)
		if confirmErr != nil {
			return confirmErr
		}

		if install {
			path, installErr := w.manager.Install(integration.LocationLocal)
			if installErr != nil {
				return clierrors.IntegrationWriteFailed(path, installErr)
			}
			w.out.Success("Integration written to %s", path)
		} else {
			w.out.Info("Run 'nautex integration install' later to register the MCP server")
		}
	}

	w.out.Println()
	w.out.Success("Nautex is ready!")
	w.showNextSteps()

	return nil
}

func (w *Wizard) showNextSteps() {
	w.out.Println()
	w.out.Println("Next steps:")
	w.out.Println("  nautex status      Check your setup")
	w.out.Println("  nautex mcp         Serve MCP tools (run by the IDE)")
	w.out.Println("  nautex --help      See all commands")
}
