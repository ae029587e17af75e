// Package scope models the task forest fetched from the Nautex plan and its
// conversion into the instruction tree handed to the coding agent.
package scope

import "fmt"

// TaskStatus is the wire status phrase used by the Nautex API.
type TaskStatus string

const (
	StatusNotStarted TaskStatus = "Not started"
	StatusInProgress TaskStatus = "In progress"
	StatusDone       TaskStatus = "Done"
	StatusBlocked    TaskStatus = "Blocked"
)

// TaskType is the wire task type tag.
type TaskType string

const (
	TypeCode   TaskType = "Code"
	TypeReview TaskType = "Review"
	TypeTest   TaskType = "Test"
	TypeInput  TaskType = "Input"
)

// Mode tells the agent what phase of the current master task it is in.
type Mode string

const (
	ModeExecuteSubtasks    Mode = "ExecuteSubtasks"
	ModeFinalizeMasterTask Mode = "FinalizeMasterTask"
)

// RequirementReference points a task at a requirement item in a plan document.
type RequirementReference struct {
	RootID     string `json:"root_id,omitempty"`
	ItemID     string `json:"item_id,omitempty"`
	Designator string `json:"requirement_designator"`
}

// FileReference points a task at a file it is expected to touch.
type FileReference struct {
	RootID string `json:"root_id,omitempty"`
	ItemID string `json:"item_id,omitempty"`
	Path   string `json:"file_path"`
}

// Task is one node of the fetched task forest. Subtasks are owned by their
// parent; the forest is strictly hierarchical with no back references.
type Task struct {
	Designator   string                 `json:"task_designator"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description,omitempty"`
	Status       TaskStatus             `json:"status"`
	Type         TaskType               `json:"type"`
	Requirements []RequirementReference `json:"requirements,omitempty"`
	Files        []FileReference        `json:"files,omitempty"`
	Subtasks     []Task                 `json:"subtasks,omitempty"`
}

// Context is a fetched fragment of the remote task hierarchy together with
// the focus set and the execution mode.
type Context struct {
	ProjectID  string   `json:"project_id"`
	Mode       Mode     `json:"mode"`
	FocusTasks []string `json:"focus_tasks"`
	Tasks      []Task   `json:"tasks"`
}

// InFocus reports whether the designator is in the focus set.
func (c *Context) InFocus(designator string) bool {
	for _, d := range c.FocusTasks {
		if d == designator {
			return true
		}
	}
	return false
}

// Validate rejects forests with repeated designators and focus entries that
// point at no task in the forest.
func (c *Context) Validate() error {
	seen := make(map[string]struct{})

	var walk func(t *Task) error
	walk = func(t *Task) error {
		if t.Designator == "" {
			return fmt.Errorf("task %q has no designator", t.Name)
		}
		if _, dup := seen[t.Designator]; dup {
			return fmt.Errorf("duplicate task designator %q", t.Designator)
		}
		seen[t.Designator] = struct{}{}
		for i := range t.Subtasks {
			if err := walk(&t.Subtasks[i]); err != nil {
				return err
			}
		}
		return nil
	}

	for i := range c.Tasks {
		if err := walk(&c.Tasks[i]); err != nil {
			return err
		}
	}

	for _, d := range c.FocusTasks {
		if _, ok := seen[d]; !ok {
			return fmt.Errorf("focus task %q not present in scope", d)
		}
	}

	return nil
}
