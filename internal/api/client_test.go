package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nautex-dev/nautex/internal/scope"
)

// testClient wires a client to an httptest server without the retry
// transport so failure cases return immediately.
func testClient(srv *httptest.Server, token string) *Client {
	return New(srv.URL, token).WithHTTPClient(srv.Client())
}

func TestClient_VerifyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/d/v1/account" {
			t.Errorf("path = %q, want /d/v1/account", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q, want Bearer tok-123", got)
		}
		if got := r.Header.Get("User-Agent"); !strings.HasPrefix(got, "nautex/") {
			t.Errorf("User-Agent = %q, want nautex/ prefix", got)
		}
		json.NewEncoder(w).Encode(AccountInfo{ProfileEmail: "user@example.com", APIVersion: "v1"})
	}))
	defer srv.Close()

	account, err := testClient(srv, "tok-123").VerifyToken(t.Context(), "")
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}

	if account.ProfileEmail != "user@example.com" {
		t.Errorf("ProfileEmail = %q", account.ProfileEmail)
	}
	if account.APIVersion != "v1" {
		t.Errorf("APIVersion = %q", account.APIVersion)
	}
}

func TestClient_VerifyToken_Override(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer candidate" {
			t.Errorf("Authorization = %q, want Bearer candidate", got)
		}
		json.NewEncoder(w).Encode(AccountInfo{ProfileEmail: "user@example.com", APIVersion: "v1"})
	}))
	defer srv.Close()

	if _, err := testClient(srv, "configured").VerifyToken(t.Context(), "candidate"); err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
}

func TestClient_VerifyToken_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(srv, "bad").VerifyToken(t.Context(), "")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Error(), "401") {
		t.Errorf("error text %q should carry the status code", apiErr.Error())
	}
}

func TestClient_Ping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"ok", http.StatusOK, false},
		{"unauthorized still reachable", http.StatusUnauthorized, false},
		{"not found still reachable", http.StatusNotFound, false},
		{"server error", http.StatusInternalServerError, true},
		{"bad gateway", http.StatusBadGateway, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := testClient(srv, "tok").Ping(t.Context())
			if (err != nil) != tt.wantErr {
				t.Errorf("Ping() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_Ping_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := New(url, "tok").WithHTTPClient(&http.Client{}).Ping(t.Context())
	if err == nil {
		t.Fatal("Ping() against a closed server should fail")
	}
	if !strings.Contains(err.Error(), "failed to connect") {
		t.Errorf("error text %q should name the connection failure", err.Error())
	}
}

func TestClient_Ping_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	err := New(srv.URL, "tok").WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}).Ping(t.Context())
	if err == nil {
		t.Fatal("Ping() should fail on timeout")
	}
}

func TestClient_ListProjects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/d/v1/projects" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"projects":[{"project_id":"PROJ-1","name":"One"},{"project_id":"PROJ-2","name":"Two"}]}`))
	}))
	defer srv.Close()

	projects, err := testClient(srv, "tok").ListProjects(t.Context())
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}

	if len(projects) != 2 {
		t.Fatalf("len(projects) = %d, want 2", len(projects))
	}
	if projects[0].ProjectID != "PROJ-1" || projects[1].Name != "Two" {
		t.Errorf("projects = %+v", projects)
	}
}

func TestClient_ListPlans(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/d/v1/projects/PROJ-1/plans" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"plans":[{"plan_id":"PLAN-1","project_id":"PROJ-1","name":"Main"}]}`))
	}))
	defer srv.Close()

	plans, err := testClient(srv, "tok").ListPlans(t.Context(), "PROJ-1")
	if err != nil {
		t.Fatalf("ListPlans() error = %v", err)
	}

	if len(plans) != 1 || plans[0].PlanID != "PLAN-1" {
		t.Errorf("plans = %+v", plans)
	}
}

func TestClient_NextScope_NoWork(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"204 no content",
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) },
		},
		{
			"null body",
			func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("null")) },
		},
		{
			"empty body",
			func(w http.ResponseWriter, r *http.Request) {},
		},
		{
			"null scope field",
			func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"scope":null}`)) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			sc, err := testClient(srv, "tok").NextScope(t.Context(), "PROJ-1", "PLAN-1")
			if err != nil {
				t.Fatalf("NextScope() error = %v", err)
			}
			if sc != nil {
				t.Errorf("NextScope() = %+v, want nil for no available work", sc)
			}
		})
	}
}

func TestClient_NextScope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/d/v1/projects/PROJ-1/plans/PLAN-1/tasks/next" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"scope":{
			"project_id":"PROJ-1",
			"mode":"ExecuteSubtasks",
			"focus_tasks":["T-1"],
			"tasks":[{"task_designator":"T-1","name":"Root","status":"Not started","type":"Code"}]
		}}`))
	}))
	defer srv.Close()

	sc, err := testClient(srv, "tok").NextScope(t.Context(), "PROJ-1", "PLAN-1")
	if err != nil {
		t.Fatalf("NextScope() error = %v", err)
	}

	if sc == nil {
		t.Fatal("NextScope() = nil, want scope")
	}
	if sc.Mode != scope.ModeExecuteSubtasks {
		t.Errorf("Mode = %q", sc.Mode)
	}
	if len(sc.Tasks) != 1 || sc.Tasks[0].Designator != "T-1" {
		t.Errorf("tasks = %+v", sc.Tasks)
	}
}

func TestClient_NextScope_InvalidForest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"scope":{
			"mode":"ExecuteSubtasks",
			"tasks":[{"task_designator":"T-1","name":"A"},{"task_designator":"T-1","name":"B"}]
		}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv, "tok").NextScope(t.Context(), "PROJ-1", "PLAN-1")
	if err == nil {
		t.Fatal("NextScope() should reject a forest with duplicate designators")
	}
}

func TestClient_UpdateTasks(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/T-FAIL/status") {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	inProgress := scope.StatusInProgress
	ops := []TaskOperation{
		{Designator: "T-1", UpdatedStatus: &inProgress, NewNote: "started"},
		{Designator: "T-FAIL", UpdatedStatus: &inProgress},
		{Designator: "T-2", NewNote: "note only"},
	}

	results, err := testClient(srv, "tok").UpdateTasks(t.Context(), "PROJ-1", "PLAN-1", ops)
	if err != nil {
		t.Fatalf("UpdateTasks() error = %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}

	if !results[0].StatusUpdated || !results[0].NoteAdded || results[0].Error != "" {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].StatusUpdated || results[1].Error == "" {
		t.Errorf("results[1] = %+v, want recorded failure", results[1])
	}
	if results[2].StatusUpdated || !results[2].NoteAdded {
		t.Errorf("results[2] = %+v", results[2])
	}

	want := []string{
		"/d/v1/projects/PROJ-1/plans/PLAN-1/tasks/T-1/status",
		"/d/v1/projects/PROJ-1/plans/PLAN-1/tasks/T-1/notes",
		"/d/v1/projects/PROJ-1/plans/PLAN-1/tasks/T-FAIL/status",
		"/d/v1/projects/PROJ-1/plans/PLAN-1/tasks/T-2/notes",
	}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestClient_TasksInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}

		var payload struct {
			Designators []string `json:"task_designators"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if len(payload.Designators) != 2 {
			t.Errorf("designators = %v", payload.Designators)
		}

		w.Write([]byte(`{"tasks":[
			{"project_id":"PROJ-1","plan_id":"PLAN-1","task_designator":"T-1","name":"One","status":"Done"},
			{"project_id":"PROJ-1","plan_id":"PLAN-1","task_designator":"T-2","name":"Two","status":"In progress"}
		]}`))
	}))
	defer srv.Close()

	tasks, err := testClient(srv, "tok").TasksInfo(t.Context(), "PROJ-1", "PLAN-1", []string{"T-1", "T-2"})
	if err != nil {
		t.Fatalf("TasksInfo() error = %v", err)
	}

	if len(tasks) != 2 || tasks[0].Status != scope.StatusDone {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestClient_RequirementsInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/d/v1/projects/PROJ-1/requirements" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"requirements":[{"project_id":"PROJ-1","requirement_designator":"REQ-45","name":"Login"}]}`))
	}))
	defer srv.Close()

	reqs, err := testClient(srv, "tok").RequirementsInfo(t.Context(), "PROJ-1", []string{"REQ-45"})
	if err != nil {
		t.Fatalf("RequirementsInfo() error = %v", err)
	}

	if len(reqs) != 1 || reqs[0].Designator != "REQ-45" {
		t.Errorf("requirements = %+v", reqs)
	}
}

func TestClient_AddRequirementNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/d/v1/projects/PROJ-1/requirements/REQ-45/notes" {
			t.Errorf("path = %q", r.URL.Path)
		}

		var payload struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.Content != "needs clarification" {
			t.Errorf("content = %q", payload.Content)
		}

		w.Write([]byte(`{"note_id":"note-9","timestamp":"2026-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	receipt, err := testClient(srv, "tok").AddRequirementNote(t.Context(), "PROJ-1", "REQ-45", "needs clarification")
	if err != nil {
		t.Fatalf("AddRequirementNote() error = %v", err)
	}

	if receipt.NoteID != "note-9" {
		t.Errorf("receipt = %+v", receipt)
	}
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Operation: "list projects", StatusCode: 503, Body: "unavailable"}

	got := err.Error()
	if !strings.Contains(got, "list projects") || !strings.Contains(got, "503") || !strings.Contains(got, "unavailable") {
		t.Errorf("Error() = %q", got)
	}
}

func TestStub_ImplementsService(t *testing.T) {
	var svc Service = NewStub()

	sc, err := svc.NextScope(t.Context(), "PROJ-1", "PLAN-1")
	if err != nil {
		t.Fatalf("NextScope() error = %v", err)
	}
	if sc == nil || len(sc.Tasks) == 0 {
		t.Fatal("stub scope should contain tasks")
	}
	if err := sc.Validate(); err != nil {
		t.Errorf("stub scope invalid: %v", err)
	}

	projects, err := svc.ListProjects(t.Context())
	if err != nil || len(projects) == 0 {
		t.Errorf("ListProjects() = %v, %v", projects, err)
	}
}
