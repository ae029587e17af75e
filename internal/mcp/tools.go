package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nautex-dev/nautex/internal/api"
	"github.com/nautex-dev/nautex/internal/config"
	"github.com/nautex-dev/nautex/internal/readiness"
	"github.com/nautex-dev/nautex/internal/scope"
)

// Tool argument shapes. Field names follow the platform's wire vocabulary.

// ListPlansArgs selects the project to list plans for.
type ListPlansArgs struct {
	ProjectID string `json:"project_id" jsonschema:"description=Project to list plans for; defaults to the configured project"`
}

// TasksUpdateArgs carries a batch of task operations.
type TasksUpdateArgs struct {
	Operations []api.TaskOperation `json:"operations" jsonschema:"required,description=Operations to apply in order; each may set updated_status and/or new_note"`
}

// TaskInfoArgs names the tasks to fetch.
type TaskInfoArgs struct {
	TaskDesignators []string `json:"task_designators" jsonschema:"required,description=Task designators like TASK-123"`
}

// RequirementInfoArgs names the requirements to fetch.
type RequirementInfoArgs struct {
	RequirementDesignators []string `json:"requirement_designators" jsonschema:"required,description=Requirement designators like REQ-45"`
}

// RequirementNoteArgs attaches a note to one requirement.
type RequirementNoteArgs struct {
	RequirementDesignator string `json:"requirement_designator" jsonschema:"required,description=Requirement designator like REQ-45"`
	Content               string `json:"content" jsonschema:"required,description=Note content"`
}

// VerifyTokenArgs optionally overrides the configured token.
type VerifyTokenArgs struct {
	Token string `json:"token" jsonschema:"description=Token to verify; defaults to the configured token"`
}

func (s *Service) registerTools(srv *server.MCPServer) {
	srv.AddTool(mcp.NewTool("nautex_status",
		mcp.WithDescription("Report whether the local environment is configured, connected and authenticated, and whether a project, plan and IDE integration are in place."),
	), s.handleStatus)

	srv.AddTool(mcp.NewTool("nautex_next_scope",
		mcp.WithDescription("Fetch the next work scope from the configured implementation plan. An empty answer means the plan has no further work."),
	), s.handleNextScope)

	srv.AddTool(mcp.NewTool("nautex_tasks_update",
		mcp.WithDescription("Apply status updates and notes to tasks of the configured plan."),
		mcp.WithInputSchema[TasksUpdateArgs](),
	), s.handleTasksUpdate)

	srv.AddTool(mcp.NewTool("nautex_list_projects",
		mcp.WithDescription("List the projects visible to the configured account."),
	), s.handleListProjects)

	srv.AddTool(mcp.NewTool("nautex_list_plans",
		mcp.WithDescription("List the implementation plans of a project."),
		mcp.WithInputSchema[ListPlansArgs](),
	), s.handleListPlans)

	srv.AddTool(mcp.NewTool("nautex_task_info",
		mcp.WithDescription("Fetch details for specific tasks of the configured plan."),
		mcp.WithInputSchema[TaskInfoArgs](),
	), s.handleTaskInfo)

	srv.AddTool(mcp.NewTool("nautex_requirement_info",
		mcp.WithDescription("Fetch details for specific requirements of the configured project."),
		mcp.WithInputSchema[RequirementInfoArgs](),
	), s.handleRequirementInfo)

	srv.AddTool(mcp.NewTool("nautex_requirement_add_note",
		mcp.WithDescription("Attach a note to a requirement of the configured project."),
		mcp.WithInputSchema[RequirementNoteArgs](),
	), s.handleRequirementAddNote)

	srv.AddTool(mcp.NewTool("nautex_verify_token",
		mcp.WithDescription("Verify an API token and report the account it belongs to."),
		mcp.WithInputSchema[VerifyTokenArgs](),
	), s.handleVerifyToken)
}

// statusData is the nautex_status answer.
type statusData struct {
	Ready       bool              `json:"ready"`
	Message     string            `json:"message"`
	Config      *config.Summary   `json:"config,omitempty"`
	Network     *readiness.Result `json:"network,omitempty"`
	Auth        *readiness.Result `json:"auth,omitempty"`
	Account     *api.AccountInfo  `json:"account,omitempty"`
	Integration integrationData   `json:"integration"`
}

type integrationData struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

func (s *Service) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	intStatus, intPath := s.integration.Check()

	in := readiness.Inputs{Integration: intStatus}
	data := statusData{
		Integration: integrationData{Status: string(intStatus), Path: intPath},
	}

	snap, err := s.resolver.Resolve()
	if err == nil && snap.HasToken() {
		in.ConfigLoaded = true
		in.Host = snap.APIHost
		in.ProjectSelected = snap.ProjectID != ""
		in.PlanSelected = snap.PlanID != ""

		summary := snap.Summary()
		data.Config = &summary

		report := readiness.NewProbe(s.newClient(snap)).Run(ctx)
		in.Network = report.Network
		in.Auth = report.Auth
		data.Network = &report.Network
		data.Auth = &report.Auth
		data.Account = report.Account
	}

	eval := readiness.Evaluate(in)
	data.Ready = eval.Ready
	data.Message = eval.Message

	return toolSuccess(data)
}

// nextScopeData is the nautex_next_scope answer.
type nextScopeData struct {
	Scope   *scope.Response `json:"scope,omitempty"`
	Message string          `json:"message,omitempty"`
}

func (s *Service) handleNextScope(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.session()
	if err != nil {
		return sessionFailure(err), nil
	}

	if sess.snap.ProjectID == "" || sess.snap.PlanID == "" {
		return toolFailure("Project or plan not selected - run 'nautex setup'"), nil
	}

	sc, err := sess.client.NextScope(ctx, sess.snap.ProjectID, sess.snap.PlanID)
	if err != nil {
		return toolFailure(err.Error()), nil
	}

	if sc == nil {
		return toolSuccess(nextScopeData{Message: "No further work available in the current plan"})
	}

	return toolSuccess(nextScopeData{Scope: scope.Transform(sc)})
}

func (s *Service) handleTasksUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args TasksUpdateArgs
	if err := request.BindArguments(&args); err != nil {
		return toolFailure("invalid arguments: " + err.Error()), nil
	}
	if len(args.Operations) == 0 {
		return toolFailure("no operations given"), nil
	}

	sess, err := s.session()
	if err != nil {
		return sessionFailure(err), nil
	}
	if sess.snap.ProjectID == "" || sess.snap.PlanID == "" {
		return toolFailure("Project or plan not selected - run 'nautex setup'"), nil
	}

	results, err := sess.client.UpdateTasks(ctx, sess.snap.ProjectID, sess.snap.PlanID, args.Operations)
	if err != nil {
		return toolFailure(err.Error()), nil
	}

	return toolSuccess(map[string]any{"results": results})
}

func (s *Service) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.session()
	if err != nil {
		return sessionFailure(err), nil
	}

	projects, err := sess.client.ListProjects(ctx)
	if err != nil {
		return toolFailure(err.Error()), nil
	}

	return toolSuccess(map[string]any{"projects": projects})
}

func (s *Service) handleListPlans(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args ListPlansArgs
	if err := request.BindArguments(&args); err != nil {
		return toolFailure("invalid arguments: " + err.Error()), nil
	}

	sess, err := s.session()
	if err != nil {
		return sessionFailure(err), nil
	}

	projectID := args.ProjectID
	if projectID == "" {
		projectID = sess.snap.ProjectID
	}
	if projectID == "" {
		return toolFailure("Project not selected - run 'nautex setup' or pass project_id"), nil
	}

	plans, err := sess.client.ListPlans(ctx, projectID)
	if err != nil {
		return toolFailure(err.Error()), nil
	}

	return toolSuccess(map[string]any{"plans": plans})
}

func (s *Service) handleTaskInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args TaskInfoArgs
	if err := request.BindArguments(&args); err != nil {
		return toolFailure("invalid arguments: " + err.Error()), nil
	}
	if len(args.TaskDesignators) == 0 {
		return toolFailure("no task designators given"), nil
	}

	sess, err := s.session()
	if err != nil {
		return sessionFailure(err), nil
	}
	if sess.snap.ProjectID == "" || sess.snap.PlanID == "" {
		return toolFailure("Project or plan not selected - run 'nautex setup'"), nil
	}

	tasks, err := sess.client.TasksInfo(ctx, sess.snap.ProjectID, sess.snap.PlanID, args.TaskDesignators)
	if err != nil {
		return toolFailure(err.Error()), nil
	}

	return toolSuccess(map[string]any{"tasks": tasks})
}

func (s *Service) handleRequirementInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args RequirementInfoArgs
	if err := request.BindArguments(&args); err != nil {
		return toolFailure("invalid arguments: " + err.Error()), nil
	}
	if len(args.RequirementDesignators) == 0 {
		return toolFailure("no requirement designators given"), nil
	}

	sess, err := s.session()
	if err != nil {
		return sessionFailure(err), nil
	}
	if sess.snap.ProjectID == "" {
		return toolFailure("Project not selected - run 'nautex setup'"), nil
	}

	reqs, err := sess.client.RequirementsInfo(ctx, sess.snap.ProjectID, args.RequirementDesignators)
	if err != nil {
		return toolFailure(err.Error()), nil
	}

	return toolSuccess(map[string]any{"requirements": reqs})
}

func (s *Service) handleRequirementAddNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args RequirementNoteArgs
	if err := request.BindArguments(&args); err != nil {
		return toolFailure("invalid arguments: " + err.Error()), nil
	}
	if args.RequirementDesignator == "" || args.Content == "" {
		return toolFailure("requirement_designator and content are required"), nil
	}

	sess, err := s.session()
	if err != nil {
		return sessionFailure(err), nil
	}
	if sess.snap.ProjectID == "" {
		return toolFailure("Project not selected - run 'nautex setup'"), nil
	}

	receipt, err := sess.client.AddRequirementNote(ctx, sess.snap.ProjectID, args.RequirementDesignator, args.Content)
	if err != nil {
		return toolFailure(err.Error()), nil
	}

	return toolSuccess(map[string]any{
		"requirement_designator": args.RequirementDesignator,
		"status":                 "note_added",
		"note_id":                receipt.NoteID,
		"timestamp":              receipt.Timestamp,
	})
}

func (s *Service) handleVerifyToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args VerifyTokenArgs
	if err := request.BindArguments(&args); err != nil {
		return toolFailure("invalid arguments: " + err.Error()), nil
	}

	sess, err := s.session()
	if err != nil {
		// A candidate token can be verified before setup has stored one.
		if args.Token == "" {
			return sessionFailure(err), nil
		}

		snap, rerr := s.resolver.Resolve()
		if rerr != nil {
			return sessionFailure(rerr), nil
		}
		sess = &session{snap: snap, client: s.newClient(snap)}
	}

	account, err := sess.client.VerifyToken(ctx, args.Token)
	if err != nil {
		return toolFailure(err.Error()), nil
	}

	return toolSuccess(map[string]any{"account": account})
}
