// Package errors provides structured CLI error types for Nautex.
//
// CLIError wraps errors with user-facing messages, hints, and exit codes
// to provide consistent, actionable error output across all commands.
package errors

import (
	"errors"
	"fmt"
)

// Exit codes for CLI errors.
const (
	ExitSuccess   = 0  // Successful execution
	ExitGeneral   = 1  // General error
	ExitAuth      = 2  // Authentication error
	ExitNetwork   = 3  // Network/API error
	ExitConfig    = 4  // Configuration error
	ExitTimeout   = 5  // Execution timeout
	ExitExecution = 6  // Execution failure
	ExitUsage     = 64 // Command line usage error (BSD convention)
)

// CLIError represents a user-facing CLI error with actionable guidance.
type CLIError struct {
	// Message is the primary error message shown to the user.
	Message string

	// Hint provides actionable guidance on how to fix the error.
	Hint string

	// Cause is the underlying error, if any.
	Cause error

	// Code is the exit code for the CLI.
	Code int
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// New creates a new CLIError with the given message and exit code.
func New(code int, message string) *CLIError {
	return &CLIError{
		Message: message,
		Code:    code,
	}
}

// Wrap wraps an existing error with a CLIError.
func Wrap(code int, message string, cause error) *CLIError {
	return &CLIError{
		Message: message,
		Cause:   cause,
		Code:    code,
	}
}

// WithHint adds a hint to the error.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// As is a convenience function for errors.As with CLIError.
func As(err error, target **CLIError) bool {
	return errors.As(err, target)
}

// --- Common error constructors ---

// NotConfigured returns an error for a missing or incomplete configuration.
func NotConfigured() *CLIError {
	return &CLIError{
		Message: "Nautex is not configured",
		Hint:    "Run 'nautex setup' to configure the connection",
		Code:    ExitConfig,
	}
}

// TokenMissing returns an error indicating no API token is set.
func TokenMissing() *CLIError {
	return &CLIError{
		Message: "API token not set",
		Hint:    "Run 'nautex setup' or set the NAUTEX_API_TOKEN environment variable",
		Code:    ExitAuth,
	}
}

// TokenEmpty returns an error when the entered API token is empty.
func TokenEmpty() *CLIError {
	return &CLIError{
		Message: "API token cannot be empty",
		Hint:    "Enter a valid token or set NAUTEX_API_TOKEN environment variable",
		Code:    ExitAuth,
	}
}

// TokenRejected returns an error when the backend rejects the API token.
func TokenRejected(cause error) *CLIError {
	return &CLIError{
		Message: "API token rejected",
		Hint:    "Check your token or run 'nautex setup' to enter a new one",
		Cause:   cause,
		Code:    ExitAuth,
	}
}

// HostUnreachable returns an error when the API host cannot be reached.
func HostUnreachable(host string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Cannot reach %s", host),
		Hint:    "Check your network connection and the configured API host",
		Cause:   cause,
		Code:    ExitNetwork,
	}
}

// ProjectNotSelected returns an error when no project is configured.
func ProjectNotSelected() *CLIError {
	return &CLIError{
		Message: "Project not selected",
		Hint:    "Run 'nautex setup' to pick a project",
		Code:    ExitConfig,
	}
}

// PlanNotSelected returns an error when no implementation plan is configured.
func PlanNotSelected() *CLIError {
	return &CLIError{
		Message: "Implementation plan not selected",
		Hint:    "Run 'nautex setup' to pick a plan",
		Code:    ExitConfig,
	}
}

// ProjectNotFound returns an error for an unknown project.
func ProjectNotFound(projectID string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Project not found: %s", projectID),
		Hint:    "Run 'nautex setup' to see available projects",
		Code:    ExitConfig,
	}
}

// NoProjects returns an error when the account has no projects.
func NoProjects() *CLIError {
	return &CLIError{
		Message: "No projects found for this account",
		Hint:    "Create a project at nautex.ai first",
		Code:    ExitConfig,
	}
}

// NoPlansForProject returns an error when a project has no implementation plans.
func NoPlansForProject(projectID string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("No implementation plans found for project %s", projectID),
		Hint:    "Create an implementation plan at nautex.ai, then rerun 'nautex setup'",
		Code:    ExitConfig,
	}
}

// CannotPrompt returns an error when interactive prompts are unavailable.
func CannotPrompt(envVar string) *CLIError {
	return &CLIError{
		Message: "Cannot prompt in non-interactive mode",
		Hint:    fmt.Sprintf("Set %s environment variable instead", envVar),
		Code:    ExitUsage,
	}
}

// ConfigFailed returns an error for configuration load/save failures.
func ConfigFailed(operation string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Failed to %s", operation),
		Hint:    "Check file permissions for the .nautex directory or run 'nautex status'",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// IntegrationWriteFailed returns an error when writing the IDE MCP entry fails.
func IntegrationWriteFailed(path string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Failed to write MCP configuration: %s", path),
		Hint:    "Check file permissions for the .cursor directory",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// APICallFailed returns an error for a failed backend call.
func APICallFailed(operation string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Failed to %s", operation),
		Hint:    "Check your network connection and API credentials",
		Cause:   cause,
		Code:    ExitNetwork,
	}
}
