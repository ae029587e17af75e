// Package mcp exposes the Nautex workflow as a tool server for IDE coding
// agents, speaking the Model Context Protocol over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nautex-dev/nautex/internal/api"
	"github.com/nautex-dev/nautex/internal/buildinfo"
	"github.com/nautex-dev/nautex/internal/config"
	"github.com/nautex-dev/nautex/internal/integration"
)

// notConfiguredMessage is returned by every tool while setup is incomplete.
// Missing configuration degrades tool answers; it never crashes the server.
const notConfiguredMessage = "Not configured - run 'nautex setup' in a terminal first"

// ClientFactory builds the API client for one tool invocation. The snapshot
// is re-resolved per call so edits to the config take effect without a
// server restart.
type ClientFactory func(snap *config.Snapshot) api.Service

// DefaultClientFactory returns the real client, or the canned-data stub
// when test mode is on.
func DefaultClientFactory(snap *config.Snapshot) api.Service {
	if snap.APITestMode {
		return api.NewStub()
	}
	return api.New(snap.APIHost, snap.APIToken)
}

// Options carries the collaborators a Service needs. Everything is injected;
// the service holds no process-wide state.
type Options struct {
	Resolver      *config.Resolver
	Integration   *integration.Manager
	Logger        *slog.Logger
	ClientFactory ClientFactory
}

// Service implements the tool handlers.
type Service struct {
	resolver    *config.Resolver
	integration *integration.Manager
	logger      *slog.Logger
	newClient   ClientFactory
}

// NewService creates the tool service.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	factory := opts.ClientFactory
	if factory == nil {
		factory = DefaultClientFactory
	}

	resolver := opts.Resolver
	if resolver == nil {
		resolver = config.NewResolver("")
	}

	manager := opts.Integration
	if manager == nil {
		manager = integration.NewManager("", "")
	}

	return &Service{
		resolver:    resolver,
		integration: manager,
		logger:      logger,
		newClient:   factory,
	}
}

// Serve runs the stdio tool server until the client disconnects. Stdout is
// reserved for the protocol; anything the service logs goes to stderr or
// the log file.
func (s *Service) Serve(ctx context.Context) error {
	srv := server.NewMCPServer("nautex", buildinfo.Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools(srv)

	s.logger.InfoContext(ctx, "starting tool server", "version", buildinfo.Version)
	return server.ServeStdio(srv)
}

// session resolves the current configuration and builds a client for it.
type session struct {
	snap   *config.Snapshot
	client api.Service
}

var errNotConfigured = errors.New("not configured")

func (s *Service) session() (*session, error) {
	snap, err := s.resolver.Resolve()
	if err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, errNotConfigured
		}
		return nil, err
	}

	if !snap.HasToken() {
		return nil, errNotConfigured
	}

	return &session{snap: snap, client: s.newClient(snap)}, nil
}

// envelope is the uniform tool response shape.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func toolSuccess(data any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(envelope{Success: true, Data: data})
	if err != nil {
		return toolFailure("failed to encode response: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func toolFailure(message string) *mcp.CallToolResult {
	raw, _ := json.Marshal(envelope{Success: false, Error: message})
	return mcp.NewToolResultText(string(raw))
}

// sessionFailure renders a session error as a degraded tool answer.
func sessionFailure(err error) *mcp.CallToolResult {
	if errors.Is(err, errNotConfigured) {
		return toolFailure(notConfiguredMessage)
	}
	return toolFailure(err.Error())
}
