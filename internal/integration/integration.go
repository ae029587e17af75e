// Package integration manages the IDE-side MCP configuration that points the
// editor's agent at the nautex tool server.
package integration

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Status describes the state of the IDE integration file.
type Status string

const (
	// StatusOK means an entry exists and invokes this CLI.
	StatusOK Status = "ok"
	// StatusMisconfigured means the file exists but the entry is missing or
	// points elsewhere.
	StatusMisconfigured Status = "misconfigured"
	// StatusNotFound means no integration file exists.
	StatusNotFound Status = "not_found"
)

// Location selects where the integration file lives.
type Location string

const (
	// LocationLocal is the project-level file, ./.cursor/mcp.json.
	LocationLocal Location = "local"
	// LocationGlobal is the user-level file, ~/.cursor/mcp.json.
	LocationGlobal Location = "global"
)

const (
	cursorDirName  = ".cursor"
	configFileName = "mcp.json"

	// serverName is the key registered in the IDE's server table.
	serverName = "nautex"
)

// ServerEntry is one server registration inside the IDE config.
type ServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

type mcpConfig struct {
	MCPServers map[string]ServerEntry `json:"mcpServers"`
}

// expectedEntry is what a correct registration looks like.
func expectedEntry() ServerEntry {
	return ServerEntry{Command: "nautex", Args: []string{"mcp"}}
}

// Manager inspects and writes IDE integration files.
type Manager struct {
	projectRoot string
	homeDir     string
}

// NewManager creates a manager rooted at the given project directory. An
// empty projectRoot means the current directory; an empty homeDir falls back
// to the user's home.
func NewManager(projectRoot, homeDir string) *Manager {
	if projectRoot == "" {
		projectRoot = "."
	}
	if homeDir == "" {
		if h, err := os.UserHomeDir(); err == nil {
			homeDir = h
		}
	}
	return &Manager{projectRoot: projectRoot, homeDir: homeDir}
}

// Path returns the integration file path for a location.
func (m *Manager) Path(loc Location) string {
	if loc == LocationGlobal {
		return filepath.Join(m.homeDir, cursorDirName, configFileName)
	}
	return filepath.Join(m.projectRoot, cursorDirName, configFileName)
}

// Check reports the integration status, preferring the project-level file
// over the user-level one, and returns the path that was inspected.
func (m *Manager) Check() (Status, string) {
	localPath := m.Path(LocationLocal)
	if status, found := checkFile(localPath); found {
		return status, localPath
	}

	globalPath := m.Path(LocationGlobal)
	if status, found := checkFile(globalPath); found {
		return status, globalPath
	}

	return StatusNotFound, localPath
}

// checkFile inspects one candidate file. found is false when the file does
// not exist at all.
func checkFile(path string) (status Status, found bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return StatusNotFound, false
		}
		return StatusMisconfigured, true
	}

	var cfg mcpConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return StatusMisconfigured, true
	}

	entry, ok := cfg.MCPServers[serverName]
	if !ok {
		return StatusMisconfigured, true
	}

	want := expectedEntry()
	if entry.Command != want.Command || len(entry.Args) != len(want.Args) {
		return StatusMisconfigured, true
	}
	for i := range want.Args {
		if entry.Args[i] != want.Args[i] {
			return StatusMisconfigured, true
		}
	}

	return StatusOK, true
}

// Install writes the nautex server entry into the integration file at the
// given location, creating the file if needed and preserving any unrelated
// server entries already registered.
func (m *Manager) Install(loc Location) (string, error) {
	path := m.Path(loc)

	cfg := mcpConfig{MCPServers: map[string]ServerEntry{}}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return path, fmt.Errorf("existing %s is not valid JSON: %w", path, err)
		}
		if cfg.MCPServers == nil {
			cfg.MCPServers = map[string]ServerEntry{}
		}
	case errors.Is(err, fs.ErrNotExist):
		// Start fresh.
	default:
		return path, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg.MCPServers[serverName] = expectedEntry()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return path, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return path, fmt.Errorf("failed to encode config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return path, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}
