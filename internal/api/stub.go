package api

import (
	"context"
	"fmt"
	"time"

	"github.com/nautex-dev/nautex/internal/scope"
)

// Stub answers every call with canned data and no network traffic. It backs
// the api_test_mode setting so the tool surface can be exercised without a
// Nautex account.
type Stub struct{}

var _ Service = (*Stub)(nil)

// NewStub creates a canned-data client.
func NewStub() *Stub {
	return &Stub{}
}

func (s *Stub) Ping(ctx context.Context) error {
	return nil
}

func (s *Stub) VerifyToken(ctx context.Context, token string) (*AccountInfo, error) {
	return &AccountInfo{ProfileEmail: "test@example.com", APIVersion: "v1"}, nil
}

func (s *Stub) ListProjects(ctx context.Context) ([]Project, error) {
	return []Project{
		{ProjectID: "PROJ-1", Name: "Demo Project", Description: "Local test-mode project"},
	}, nil
}

func (s *Stub) ListPlans(ctx context.Context, projectID string) ([]Plan, error) {
	return []Plan{
		{PlanID: "PLAN-1", ProjectID: projectID, Name: "Demo Plan", Description: "Local test-mode plan"},
	}, nil
}

func (s *Stub) NextScope(ctx context.Context, projectID, planID string) (*scope.Context, error) {
	return &scope.Context{
		ProjectID:  projectID,
		Mode:       scope.ModeExecuteSubtasks,
		FocusTasks: []string{"T-2"},
		Tasks: []scope.Task{
			{
				Designator:   "T-1",
				Name:         "Demo master task",
				Description:  "Sample work scope produced by test mode",
				Status:       scope.StatusInProgress,
				Type:         scope.TypeCode,
				Requirements: []scope.RequirementReference{{Designator: "REQ-1"}},
				Subtasks: []scope.Task{
					{
						Designator: "T-2",
						Name:       "Demo subtask",
						Status:     scope.StatusNotStarted,
						Type:       scope.TypeCode,
						Files:      []scope.FileReference{{Path: "src/demo.go"}},
					},
				},
			},
		},
	}, nil
}

func (s *Stub) TasksInfo(ctx context.Context, projectID, planID string, designators []string) ([]Task, error) {
	tasks := make([]Task, 0, len(designators))
	for _, d := range designators {
		tasks = append(tasks, Task{
			ProjectID:  projectID,
			PlanID:     planID,
			Designator: d,
			Name:       fmt.Sprintf("Demo task %s", d),
			Status:     scope.StatusNotStarted,
		})
	}
	return tasks, nil
}

func (s *Stub) UpdateTasks(ctx context.Context, projectID, planID string, ops []TaskOperation) ([]TaskOperationResult, error) {
	results := make([]TaskOperationResult, 0, len(ops))
	for _, op := range ops {
		results = append(results, TaskOperationResult{
			Designator:    op.Designator,
			StatusUpdated: op.UpdatedStatus != nil,
			NoteAdded:     op.NewNote != "",
		})
	}
	return results, nil
}

func (s *Stub) RequirementsInfo(ctx context.Context, projectID string, designators []string) ([]Requirement, error) {
	reqs := make([]Requirement, 0, len(designators))
	for _, d := range designators {
		reqs = append(reqs, Requirement{
			ProjectID:   projectID,
			Designator:  d,
			Name:        fmt.Sprintf("Demo requirement %s", d),
			Description: "Sample requirement produced by test mode",
			Status:      "approved",
		})
	}
	return reqs, nil
}

func (s *Stub) AddRequirementNote(ctx context.Context, projectID, designator, content string) (*NoteReceipt, error) {
	return &NoteReceipt{
		NoteID:    "note-1",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}
