package scope

// Node is the agent-facing view of a task. It mirrors the shape of the
// fetched Task one to one; only the two guidance strings are derived.
type Node struct {
	Designator   string   `json:"designator"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Status       string   `json:"status"`
	Type         string   `json:"type,omitempty"`
	Requirements []string `json:"requirements"`
	Files        []string `json:"files"`
	ContextNote  string   `json:"context_note,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
	Subtasks     []Node   `json:"subtasks"`
}

// Response is the tree returned to the invoking tool call.
type Response struct {
	ProgressContext string `json:"progress_context"`
	Instructions    string `json:"instructions"`
	Tasks           []Node `json:"tasks"`
}

const (
	contextOnlyNote = "Context-only task. Consider it for your information when working on the focus tasks."

	doneInstruction    = "This task is completed. No further action needed."
	blockedInstruction = "This task is blocked. Resolve blocking issues before continuing."
)

var modeInstructions = map[Mode]string{
	ModeExecuteSubtasks:    "Execute subtasks in order. Complete all subtasks before marking the parent task as done.",
	ModeFinalizeMasterTask: "All subtasks are completed. Review and finalize the master task.",
}

type tableKey struct {
	Status TaskStatus
	Type   TaskType
	Mode   Mode
}

// instructionTable holds the guidance for every actionable
// (status, type, mode) combination. A lookup that misses, for example a
// status value this build does not know, yields an empty string. The table
// is deliberately flat so each cell can be asserted on its own.
var instructionTable = map[tableKey]string{
	{StatusNotStarted, TypeCode, ModeExecuteSubtasks}:   "This task is not started yet. Review requirements and referenced files, then implement the changes.",
	{StatusNotStarted, TypeReview, ModeExecuteSubtasks}: "This task is not started yet. Ask the user to review the referenced work before proceeding.",
	{StatusNotStarted, TypeTest, ModeExecuteSubtasks}:   "This task is not started yet. Write and run tests covering the referenced requirements.",
	{StatusNotStarted, TypeInput, ModeExecuteSubtasks}:  "This task is not started yet. Request the required input from the user before continuing.",
	{StatusInProgress, TypeCode, ModeExecuteSubtasks}:   "This task is in progress. Continue implementation according to the requirements.",
	{StatusInProgress, TypeReview, ModeExecuteSubtasks}: "This task is in progress. Collect outstanding review feedback and address it.",
	{StatusInProgress, TypeTest, ModeExecuteSubtasks}:   "This task is in progress. Finish the remaining tests and make them pass.",
	{StatusInProgress, TypeInput, ModeExecuteSubtasks}:  "This task is in progress. Awaiting user input; follow up on the open questions.",

	{StatusNotStarted, TypeCode, ModeFinalizeMasterTask}:   "Subtasks are complete. Implement the remaining changes of the master task.",
	{StatusNotStarted, TypeReview, ModeFinalizeMasterTask}: "Subtasks are complete. Ask the user to review the combined work.",
	{StatusNotStarted, TypeTest, ModeFinalizeMasterTask}:   "Subtasks are complete. Write and run the final tests for the master task.",
	{StatusNotStarted, TypeInput, ModeFinalizeMasterTask}:  "Subtasks are complete. Request the final input needed to close the master task.",
	{StatusInProgress, TypeCode, ModeFinalizeMasterTask}:   "Subtasks are complete. Finish the master task implementation and verify it.",
	{StatusInProgress, TypeReview, ModeFinalizeMasterTask}: "Subtasks are complete. Address the remaining review feedback on the master task.",
	{StatusInProgress, TypeTest, ModeFinalizeMasterTask}:   "Subtasks are complete. Make the final test suite pass for the master task.",
	{StatusInProgress, TypeInput, ModeFinalizeMasterTask}:  "Subtasks are complete. Follow up on the outstanding input for the master task.",
}

// guidance derives the instruction and context note for one node. Rules
// apply in order and the first match wins: an out-of-focus node renders the
// same way whatever its status, a Done or Blocked node renders the same way
// whatever the mode, and only actionable in-focus nodes consult the table.
func guidance(status TaskStatus, typ TaskType, mode Mode, inFocus bool) (instructions, note string) {
	if !inFocus {
		return "", contextOnlyNote
	}

	switch status {
	case StatusDone:
		return doneInstruction, contextOnlyNote
	case StatusBlocked:
		return blockedInstruction, ""
	}

	return instructionTable[tableKey{Status: status, Type: typ, Mode: mode}], ""
}

// Transform renders a fetched scope into the response tree for the agent.
// It is pure: the input context is not modified and equal inputs always
// produce equal trees.
func Transform(sc *Context) *Response {
	resp := &Response{
		ProgressContext: "Current mode: " + string(sc.Mode),
		Instructions:    modeInstructions[sc.Mode],
		Tasks:           make([]Node, 0, len(sc.Tasks)),
	}

	for i := range sc.Tasks {
		resp.Tasks = append(resp.Tasks, transformTask(&sc.Tasks[i], sc))
	}

	return resp
}

func transformTask(t *Task, sc *Context) Node {
	instructions, note := guidance(t.Status, t.Type, sc.Mode, sc.InFocus(t.Designator))

	node := Node{
		Designator:   t.Designator,
		Name:         t.Name,
		Description:  t.Description,
		Status:       string(t.Status),
		Type:         string(t.Type),
		Requirements: make([]string, 0, len(t.Requirements)),
		Files:        make([]string, 0, len(t.Files)),
		ContextNote:  note,
		Instructions: instructions,
		Subtasks:     make([]Node, 0, len(t.Subtasks)),
	}

	for _, req := range t.Requirements {
		if req.Designator != "" {
			node.Requirements = append(node.Requirements, req.Designator)
		}
	}

	for _, f := range t.Files {
		node.Files = append(node.Files, f.Path)
	}

	for i := range t.Subtasks {
		node.Subtasks = append(node.Subtasks, transformTask(&t.Subtasks[i], sc))
	}

	return node
}
