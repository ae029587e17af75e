// Package api provides the client for the Nautex platform API.
//
// The client handles authentication and provides methods for:
//   - Validating API tokens
//   - Listing projects and implementation plans
//   - Fetching the next work scope for a plan
//   - Updating task statuses and attaching notes
//   - Reading tasks and requirements
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nautex-dev/nautex/internal/buildinfo"
	"github.com/nautex-dev/nautex/internal/scope"
)

const (
	// versionPath is prepended to every endpoint path.
	versionPath = "/d/v1/"
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
)

// APIError is returned when the platform answers with an unexpected status.
// The status code is preserved so callers can tell an auth rejection from a
// server-side failure.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed with status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Service is the surface the rest of the CLI programs against. Client talks
// to the real platform; Stub answers with canned data for test mode.
type Service interface {
	Ping(ctx context.Context) error
	VerifyToken(ctx context.Context, token string) (*AccountInfo, error)
	ListProjects(ctx context.Context) ([]Project, error)
	ListPlans(ctx context.Context, projectID string) ([]Plan, error)
	NextScope(ctx context.Context, projectID, planID string) (*scope.Context, error)
	TasksInfo(ctx context.Context, projectID, planID string, designators []string) ([]Task, error)
	UpdateTasks(ctx context.Context, projectID, planID string, ops []TaskOperation) ([]TaskOperationResult, error)
	RequirementsInfo(ctx context.Context, projectID string, designators []string) ([]Requirement, error)
	AddRequirementNote(ctx context.Context, projectID, designator, content string) (*NoteReceipt, error)
}

// Client is the Nautex API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ Service = (*Client)(nil)

// New creates a client for the given host. Requests retry on connection
// failures and 5xx responses; 4xx responses surface immediately.
func New(baseURL, token string) *Client {
	retry := retryablehttp.NewClient()
	retry.RetryMax = 2
	retry.RetryWaitMin = 500 * time.Millisecond
	retry.RetryWaitMax = 2 * time.Second
	retry.Logger = nil
	retry.HTTPClient.Timeout = DefaultTimeout
	retry.HTTPClient.Transport = otelhttp.NewTransport(http.DefaultTransport)

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: retry.StandardClient(),
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the configured host.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + versionPath + strings.TrimLeft(path, "/")
}

// Ping checks that the host answers at all. Any response below 500 counts
// as reachable, including auth rejections; only connection failures,
// timeouts and server errors are reported.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("account"), http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.setRequestHeaders(req, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return unexpectedStatus("ping", resp.StatusCode, resp.Body)
	}

	return nil
}

// VerifyToken validates an API token and returns the account it belongs to.
// An empty token argument verifies the client's configured token.
func (c *Client) VerifyToken(ctx context.Context, token string) (*AccountInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("account"), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setRequestHeaders(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus("verify token", resp.StatusCode, resp.Body)
	}

	var account AccountInfo
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return nil, fmt.Errorf("failed to parse account info: %w", err)
	}

	return &account, nil
}

// ListProjects fetches all projects visible to the account.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var response projectListResponse
	if err := c.get(ctx, "list projects", "projects", &response); err != nil {
		return nil, err
	}
	return response.Projects, nil
}

// ListPlans fetches the implementation plans of a project.
func (c *Client) ListPlans(ctx context.Context, projectID string) ([]Plan, error) {
	var response planListResponse
	if err := c.get(ctx, "list plans", fmt.Sprintf("projects/%s/plans", projectID), &response); err != nil {
		return nil, err
	}
	return response.Plans, nil
}

// NextScope fetches the next work scope for a plan. A nil context with a nil
// error means the plan has no further work; callers must treat that as a
// normal outcome, not a failure.
func (c *Client) NextScope(ctx context.Context, projectID, planID string) (*scope.Context, error) {
	url := c.endpoint(fmt.Sprintf("projects/%s/plans/%s/tasks/next", projectID, planID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setRequestHeaders(req, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch next scope: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content = no work available
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus("next scope", resp.StatusCode, resp.Body)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// 200 with an empty or null body also means no work available.
	trimmed := bytes.TrimSpace(respBody)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}

	var response nextScopeResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to parse scope: %w", err)
	}

	if response.Scope == nil {
		return nil, nil
	}

	if err := response.Scope.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scope from server: %w", err)
	}

	return response.Scope, nil
}

// TasksInfo fetches the named tasks of a plan.
func (c *Client) TasksInfo(ctx context.Context, projectID, planID string, designators []string) ([]Task, error) {
	path := fmt.Sprintf("projects/%s/plans/%s/tasks", projectID, planID)
	payload := map[string]any{"task_designators": designators}

	var response taskListResponse
	if err := c.post(ctx, "tasks info", path, payload, &response); err != nil {
		return nil, err
	}
	return response.Tasks, nil
}

// UpdateTasks applies a batch of task operations in order. Each operation
// applies its status change before its note. A failed operation is recorded
// in its result and does not stop the batch.
func (c *Client) UpdateTasks(ctx context.Context, projectID, planID string, ops []TaskOperation) ([]TaskOperationResult, error) {
	results := make([]TaskOperationResult, 0, len(ops))

	for _, op := range ops {
		result := TaskOperationResult{Designator: op.Designator}

		if op.UpdatedStatus != nil {
			if err := c.updateTaskStatus(ctx, projectID, planID, op.Designator, *op.UpdatedStatus); err != nil {
				result.Error = err.Error()
				results = append(results, result)
				continue
			}
			result.StatusUpdated = true
		}

		if op.NewNote != "" {
			if err := c.addTaskNote(ctx, projectID, planID, op.Designator, op.NewNote); err != nil {
				result.Error = err.Error()
				results = append(results, result)
				continue
			}
			result.NoteAdded = true
		}

		results = append(results, result)
	}

	return results, nil
}

func (c *Client) updateTaskStatus(ctx context.Context, projectID, planID, designator string, status scope.TaskStatus) error {
	path := fmt.Sprintf("projects/%s/plans/%s/tasks/%s/status", projectID, planID, designator)
	return c.post(ctx, "update task status", path, map[string]any{"status": status}, nil)
}

func (c *Client) addTaskNote(ctx context.Context, projectID, planID, designator, content string) error {
	path := fmt.Sprintf("projects/%s/plans/%s/tasks/%s/notes", projectID, planID, designator)
	return c.post(ctx, "add task note", path, map[string]any{"content": content}, nil)
}

// RequirementsInfo fetches the named requirements of a project.
func (c *Client) RequirementsInfo(ctx context.Context, projectID string, designators []string) ([]Requirement, error) {
	path := fmt.Sprintf("projects/%s/requirements", projectID)
	payload := map[string]any{"requirement_designators": designators}

	var response requirementListResponse
	if err := c.post(ctx, "requirements info", path, payload, &response); err != nil {
		return nil, err
	}
	return response.Requirements, nil
}

// AddRequirementNote attaches a note to a requirement.
func (c *Client) AddRequirementNote(ctx context.Context, projectID, designator, content string) (*NoteReceipt, error) {
	path := fmt.Sprintf("projects/%s/requirements/%s/notes", projectID, designator)

	var receipt NoteReceipt
	if err := c.post(ctx, "add requirement note", path, map[string]any{"content": content}, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *Client) get(ctx context.Context, operation, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.setRequestHeaders(req, "")

	return c.do(operation, req, out)
}

func (c *Client) post(ctx context.Context, operation, path string, payload, out any) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.setRequestHeaders(req, "")

	return c.do(operation, req, out)
}

func (c *Client) do(operation string, req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return unexpectedStatus(operation, resp.StatusCode, resp.Body)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", operation, err)
	}

	return nil
}

func (c *Client) setRequestHeaders(req *http.Request, tokenOverride string) {
	token := c.token
	if tokenOverride != "" {
		token = tokenOverride
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "nautex/"+buildinfo.Version)
}

// unexpectedStatus creates an APIError from an unexpected HTTP status code.
func unexpectedStatus(operation string, statusCode int, body io.Reader) error {
	respBody, readErr := io.ReadAll(body)
	if readErr != nil {
		return &APIError{Operation: operation, StatusCode: statusCode, Body: fmt.Sprintf("(failed to read body: %v)", readErr)}
	}
	return &APIError{Operation: operation, StatusCode: statusCode, Body: strings.TrimSpace(string(respBody))}
}
