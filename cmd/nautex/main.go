// Package main is the entry point for the Nautex CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nautex-dev/nautex/internal/buildinfo"
	clierrors "github.com/nautex-dev/nautex/internal/errors"
	"github.com/nautex-dev/nautex/internal/observability"
	"github.com/nautex-dev/nautex/internal/output"
	"github.com/nautex-dev/nautex/internal/paths"
)

// Set via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() (exitCode int) {
	// A panic mid-spinner leaves the cursor hidden; show it again before
	// the crash output.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprint(os.Stderr, "\033[?25h")
			panic(r)
		}
	}()

	buildinfo.Version = version
	buildinfo.Commit = commit

	out := output.Default()

	if err := newRootCmd().Execute(); err != nil {
		return handleError(out, err)
	}
	return 0
}

// handleError renders err and maps it to an exit code. CLIErrors carry their
// own message, hint and code; raw cobra errors (unknown command, flags that
// bypassed SetFlagErrorFunc) are treated as usage errors.
func handleError(out *output.Writer, err error) int {
	var cliErr *clierrors.CLIError
	if clierrors.As(err, &cliErr) {
		out.Failure("%s", cliErr.Message)
		if cliErr.Hint != "" {
			out.Info("%s", cliErr.Hint)
		}
		return cliErr.Code
	}

	msg := err.Error()
	out.Failure("%s", msg)

	switch {
	case strings.HasPrefix(msg, "unknown command"):
		if !strings.Contains(msg, "--help") {
			out.Info("Run 'nautex --help' for usage")
		}
		return clierrors.ExitUsage
	case strings.HasPrefix(msg, "unknown flag"),
		strings.HasPrefix(msg, "unknown shorthand flag"),
		strings.Contains(msg, "required flag"):
		out.Info("Run 'nautex --help' for usage")
		return clierrors.ExitUsage
	}

	return clierrors.ExitGeneral
}

// globalFlags holds the persistent flag values shared by every command.
type globalFlags struct {
	jsonOutput bool
	quiet      bool
	noColor    bool
	noInput    bool
	logLevel   string
	logFormat  string
	logFile    string
	logStderr  string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	out := output.Default()

	rootCmd := &cobra.Command{
		Use:   "nautex",
		Short: "Nautex - MCP bridge between your coding agent and the Nautex platform",
		Long: `Nautex connects an IDE coding agent to the Nautex.ai task platform.
It serves MCP tools over stdio so the agent can pull work scopes,
update task status, and attach notes while you stay in the IDE.

Get started:
  nautex setup                Configure token, project and plan
  nautex integration install  Register the MCP server with your IDE
  nautex status               Check connectivity and readiness
  nautex mcp                  Serve MCP over stdio (run by the IDE)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupCommandEnvironment(cmd, out, &flags)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&flags.jsonOutput, "json", false, "Output in JSON format")
	pf.BoolVar(&flags.quiet, "quiet", false, "Minimal output (for CI)")
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	pf.BoolVar(&flags.noInput, "no-input", false, "Disable interactive prompts")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: error, warn, info, debug")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: json, text")
	pf.StringVar(&flags.logFile, "log-file", "", "Optional structured log file path")
	pf.StringVar(&flags.logStderr, "log-stderr", "", "Structured logging to stderr: auto, on, off")

	rootCmd.SuggestionsMinimumDistance = 2

	// Raw flag errors become CLIErrors so they render like everything else.
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &clierrors.CLIError{
			Message: err.Error(),
			Hint:    fmt.Sprintf("Run '%s --help' for available flags", cmd.CommandPath()),
			Code:    clierrors.ExitUsage,
		}
	})

	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newSetupCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newIntegrationCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// setupCommandEnvironment wires output modes, the structured logger and the
// optional tracing pipeline into the command context before any RunE fires.
func setupCommandEnvironment(cmd *cobra.Command, out *output.Writer, flags *globalFlags) error {
	out.JSON = pickBoolFlagOrEnv(flags.jsonOutput, "NAUTEX_JSON")
	out.Quiet = pickBoolFlagOrEnv(flags.quiet, "NAUTEX_QUIET")
	out.NoInput = pickBoolFlagOrEnv(flags.noInput, "NAUTEX_NO_INPUT") || pickBoolFlagOrEnv(false, "CI")

	if flags.noColor {
		out.SetNoColor(true)
		color.NoColor = true
	}

	interactive := out.Terminal().IsTTY && isInteractiveCommand(cmd.CommandPath())

	logFile := pickFlagOrEnv(flags.logFile, "NAUTEX_LOG_FILE", "")
	if interactive && logFile == "" {
		// Interactive commands keep stderr for prompts, so a file sink
		// must exist somewhere.
		if fallback, err := paths.DefaultLogFile(); err == nil {
			logFile = fallback
		}
	}

	logger, cleanup, err := observability.NewLogger(&observability.Config{
		Level:          pickFlagOrEnv(flags.logLevel, "NAUTEX_LOG_LEVEL", "info"),
		Format:         pickFlagOrEnv(flags.logFormat, "NAUTEX_LOG_FORMAT", "json"),
		LogFile:        logFile,
		StderrMode:     pickFlagOrEnv(flags.logStderr, "NAUTEX_LOG_STDERR", "auto"),
		InteractiveTTY: interactive,
		SessionID:      uuid.NewString(),
		CommandPath:    cmd.CommandPath(),
		Version:        version,
		Commit:         commit,
	})
	if err != nil {
		return &clierrors.CLIError{
			Message: fmt.Sprintf("Invalid logging configuration: %v", err),
			Hint:    "Use --log-level (error|warn|info|debug), --log-format (json|text), --log-stderr (auto|on|off), and/or --log-file",
			Code:    clierrors.ExitUsage,
		}
	}

	slog.SetDefault(logger)

	ctx := out.WithContext(cmd.Context())
	ctx = observability.WithLogger(ctx, logger)
	cmd.SetContext(ctx)

	if cleanup != nil {
		cmd.PostRunE = wrapPostRunCleanup(cmd.PostRunE, cleanup)
	}

	// Tracing is opt-in via OTEL_ENABLED; failures only log, never block.
	shutdown, telemetryErr := observability.SetupTelemetry(ctx, &observability.TelemetryConfig{
		Enabled: observability.IsTelemetryEnabled(),
		Version: version,
		Commit:  commit,
	})
	if telemetryErr != nil {
		logger.Warn("telemetry initialization failed", slog.String("error", telemetryErr.Error()))
	}
	if shutdown != nil {
		cmd.PostRunE = wrapNamedPostRunCleanup(cmd.PostRunE, "telemetry resources", func() error {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return shutdown(shutdownCtx)
		})
	}

	return nil
}

func wrapPostRunCleanup(postRun func(*cobra.Command, []string) error, cleanup func() error) func(*cobra.Command, []string) error {
	return wrapNamedPostRunCleanup(postRun, "logger resources", cleanup)
}

// wrapNamedPostRunCleanup chains cleanup after any existing PostRunE. The
// cleanup always runs, even when the wrapped PostRunE fails.
func wrapNamedPostRunCleanup(postRun func(*cobra.Command, []string) error, name string, cleanup func() error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if postRun != nil {
			if err := postRun(cmd, args); err != nil {
				_ = cleanup()
				return err
			}
		}

		if err := cleanup(); err != nil {
			return fmt.Errorf("cleanup %s: %w", name, err)
		}
		return nil
	}
}

func pickBoolFlagOrEnv(flagValue bool, envKey string) bool {
	if flagValue {
		return true
	}

	switch strings.ToLower(strings.TrimSpace(os.Getenv(envKey))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func pickFlagOrEnv(flagValue, envKey, fallback string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v
	}
	return fallback
}

// isInteractiveCommand reports whether the command owns the terminal and
// stderr should stay clean for prompts.
func isInteractiveCommand(path string) bool {
	return path == "nautex setup" || strings.HasPrefix(path, "nautex setup ")
}

// noArgs rejects positional arguments with a message naming the command,
// unlike cobra.NoArgs which reports "unknown command".
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return &clierrors.CLIError{
			Message: fmt.Sprintf("'%s' accepts no arguments", cmd.CommandPath()),
			Hint:    fmt.Sprintf("Run '%s --help' for usage", cmd.CommandPath()),
			Code:    clierrors.ExitUsage,
		}
	}
	return nil
}

// VersionInfo is the --json payload for the version command.
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Show version information",
		Long:    `Display the nautex binary version, git commit, and build date.`,
		Example: `  nautex version`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			if out.JSON {
				return out.PrintJSON(VersionInfo{Version: version, Commit: commit, Date: date})
			}

			out.Print("nautex %s\n", version)
			out.Print("  commit: %s\n", commit)
			out.Print("  built:  %s\n", date)
			return nil
		},
	}
}
