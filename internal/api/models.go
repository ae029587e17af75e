package api

import "github.com/nautex-dev/nautex/internal/scope"

// AccountInfo is returned by the account endpoint after token validation.
type AccountInfo struct {
	ProfileEmail string `json:"profile_email"`
	APIVersion   string `json:"api_version"`
}

// Project is a project entity visible to the authenticated account.
type Project struct {
	ProjectID   string `json:"project_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Plan is an implementation plan belonging to a project.
type Plan struct {
	PlanID      string `json:"plan_id"`
	ProjectID   string `json:"project_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Task is a task entity as returned by the task endpoints.
type Task struct {
	ProjectID    string           `json:"project_id"`
	PlanID       string           `json:"plan_id"`
	Designator   string           `json:"task_designator"`
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	Status       scope.TaskStatus `json:"status"`
	Requirements []string         `json:"requirements,omitempty"`
	Notes        []string         `json:"notes,omitempty"`
}

// Requirement is a requirement entity from the requirements endpoints.
type Requirement struct {
	ProjectID   string   `json:"project_id"`
	Designator  string   `json:"requirement_designator"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	Notes       []string `json:"notes,omitempty"`
}

// TaskOperation is one requested change to a task. Either or both fields may
// be set; a status change is applied before a new note.
type TaskOperation struct {
	Designator    string            `json:"task_designator"`
	UpdatedStatus *scope.TaskStatus `json:"updated_status,omitempty"`
	NewNote       string            `json:"new_note,omitempty"`
}

// TaskOperationResult reports the outcome of a single TaskOperation.
type TaskOperationResult struct {
	Designator    string `json:"task_designator"`
	StatusUpdated bool   `json:"status_updated,omitempty"`
	NoteAdded     bool   `json:"note_added,omitempty"`
	Error         string `json:"error,omitempty"`
}

// NoteReceipt confirms a stored note.
type NoteReceipt struct {
	NoteID    string `json:"note_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type projectListResponse struct {
	Projects []Project `json:"projects"`
}

type planListResponse struct {
	Plans []Plan `json:"plans"`
}

type taskListResponse struct {
	Tasks []Task `json:"tasks"`
}

type requirementListResponse struct {
	Requirements []Requirement `json:"requirements"`
}

type nextScopeResponse struct {
	Scope *scope.Context `json:"scope"`
}
