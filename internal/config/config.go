// Package config resolves Nautex configuration from layered sources.
//
// Sources (in priority order):
//  1. Environment variables (NAUTEX_*)
//  2. A .env file at the project root
//  3. The JSON config file (.nautex/config.json)
//  4. Built-in defaults
//
// Resolution is per-field: each field independently takes its value from the
// highest-priority source that provides one. The result is an immutable
// Snapshot; re-resolving replaces it wholesale.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	// DefaultAPIHost is the default Nautex.ai API endpoint.
	DefaultAPIHost = "https://api.nautex.ai"
	// ConfigDirName is the project-relative configuration directory.
	ConfigDirName = ".nautex"
	// ConfigFileName is the JSON configuration file name.
	ConfigFileName = "config.json"
	// EnvPrefix is the prefix for configuration environment variables.
	EnvPrefix = "NAUTEX_"
	// DotenvFileName is the dotenv file consulted at the project root.
	DotenvFileName = ".env"
)

// Configuration keys. These are both the JSON file keys and, uppercased with
// the NAUTEX_ prefix, the environment variable names.
const (
	KeyAPIHost           = "api_host"
	KeyAPIToken          = "api_token"
	KeyAgentInstanceName = "agent_instance_name"
	KeyProjectID         = "project_id"
	KeyPlanID            = "implementation_plan_id"
	KeyAPITestMode       = "api_test_mode"
)

// Keys lists all configuration keys in display order.
var Keys = []string{
	KeyAPIHost,
	KeyAPIToken,
	KeyAgentInstanceName,
	KeyProjectID,
	KeyPlanID,
	KeyAPITestMode,
}

// Snapshot is an immutable view of the resolved configuration.
type Snapshot struct {
	APIHost           string `json:"api_host"`
	APIToken          string `json:"api_token"`
	AgentInstanceName string `json:"agent_instance_name"`
	ProjectID         string `json:"project_id"`
	PlanID            string `json:"implementation_plan_id"`
	APITestMode       bool   `json:"api_test_mode"`
}

// HasToken reports whether an API token is set.
func (s *Snapshot) HasToken() bool {
	return strings.TrimSpace(s.APIToken) != ""
}

// Summary is the loggable view of a Snapshot. It carries a has_token flag
// instead of the token itself.
type Summary struct {
	APIHost           string `json:"api_host"`
	AgentInstanceName string `json:"agent_instance_name"`
	ProjectID         string `json:"project_id"`
	PlanID            string `json:"implementation_plan_id"`
	HasToken          bool   `json:"has_token"`
	APITestMode       bool   `json:"api_test_mode"`
}

// Summary returns the snapshot with the secret token reduced to a boolean.
func (s *Snapshot) Summary() Summary {
	return Summary{
		APIHost:           s.APIHost,
		AgentInstanceName: s.AgentInstanceName,
		ProjectID:         s.ProjectID,
		PlanID:            s.PlanID,
		HasToken:          s.HasToken(),
		APITestMode:       s.APITestMode,
	}
}

// ConfigurationError indicates malformed on-disk configuration. It is
// recoverable: callers continue in a degraded "not configured" mode.
type ConfigurationError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration in %s: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// Resolver merges configuration sources rooted at a project directory.
type Resolver struct {
	dir string
}

// NewResolver creates a Resolver for the given project root.
// An empty dir means the current working directory.
func NewResolver(dir string) *Resolver {
	if dir == "" {
		dir = "."
	}

	return &Resolver{dir: dir}
}

// ConfigPath returns the path of the JSON config file.
func (r *Resolver) ConfigPath() string {
	return filepath.Join(r.dir, ConfigDirName, ConfigFileName)
}

// DotenvPath returns the path of the project-root dotenv file.
func (r *Resolver) DotenvPath() string {
	return filepath.Join(r.dir, DotenvFileName)
}

// ConfigExists reports whether the JSON config file is present.
func (r *Resolver) ConfigExists() bool {
	_, err := os.Stat(r.ConfigPath())
	return err == nil
}

// Resolve merges all sources into a fresh Snapshot.
// Malformed on-disk data yields a *ConfigurationError; a missing config file
// or dotenv file is not an error.
func (r *Resolver) Resolve() (*Snapshot, error) {
	v := viper.New()
	v.SetConfigFile(r.ConfigPath())
	v.SetConfigType("json")

	v.SetDefault(KeyAPIHost, DefaultAPIHost)
	v.SetDefault(KeyAPIToken, "")
	v.SetDefault(KeyAgentInstanceName, "")
	v.SetDefault(KeyProjectID, "")
	v.SetDefault(KeyPlanID, "")
	v.SetDefault(KeyAPITestMode, false)

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigurationError{Path: r.ConfigPath(), Cause: err}
		}
	}

	dotenv, err := r.readDotenv()
	if err != nil {
		return nil, err
	}

	lookup := func(key string) string {
		envKey := EnvPrefix + strings.ToUpper(key)
		if val, ok := os.LookupEnv(envKey); ok {
			return val
		}

		if val, ok := dotenv[envKey]; ok {
			return val
		}

		return v.GetString(key)
	}

	snap := &Snapshot{
		APIHost:           strings.TrimRight(strings.TrimSpace(lookup(KeyAPIHost)), "/"),
		APIToken:          lookup(KeyAPIToken),
		AgentInstanceName: lookup(KeyAgentInstanceName),
		ProjectID:         lookup(KeyProjectID),
		PlanID:            lookup(KeyPlanID),
		APITestMode:       ParseBool(lookup(KeyAPITestMode)),
	}

	if snap.APIHost == "" {
		snap.APIHost = DefaultAPIHost
	}

	return snap, nil
}

// readDotenv parses the project-root .env file into a key/value map.
func (r *Resolver) readDotenv() (map[string]string, error) {
	file, err := os.Open(r.DotenvPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, &ConfigurationError{Path: r.DotenvPath(), Cause: err}
	}
	defer file.Close()

	env, err := gotenv.StrictParse(file)
	if err != nil {
		return nil, &ConfigurationError{Path: r.DotenvPath(), Cause: err}
	}

	return env, nil
}

// Save writes the snapshot to the JSON config file with owner-only
// permissions. The token is stored in cleartext; the file is the access
// boundary.
func (r *Resolver) Save(snap *Snapshot) error {
	dir := filepath.Join(r.dir, ConfigDirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	path := r.ConfigPath()
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	// WriteFile only applies the mode on creation; tighten pre-existing
	// files too. Best-effort on platforms without POSIX permissions.
	_ = os.Chmod(path, 0o600)

	return nil
}

// Remove deletes the JSON config file. Missing files are not an error.
func (r *Resolver) Remove() error {
	err := os.Remove(r.ConfigPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove config file: %w", err)
	}

	return nil
}

// Set assigns a configuration value on a copy of the snapshot by key name.
func Set(snap Snapshot, key, value string) (Snapshot, error) {
	switch key {
	case KeyAPIHost:
		snap.APIHost = strings.TrimRight(strings.TrimSpace(value), "/")
	case KeyAPIToken:
		snap.APIToken = value
	case KeyAgentInstanceName:
		snap.AgentInstanceName = value
	case KeyProjectID:
		snap.ProjectID = value
	case KeyPlanID:
		snap.PlanID = value
	case KeyAPITestMode:
		snap.APITestMode = ParseBool(value)
	default:
		return snap, fmt.Errorf("unknown configuration key: %q", key)
	}

	return snap, nil
}

// ParseBool interprets a configuration boolean. Case-insensitive
// "true", "1", "yes", and "on" are true; everything else is false.
func ParseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}
