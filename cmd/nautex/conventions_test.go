package main

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// commandLint is a per-command convention check. It returns an empty string
// when the command passes, or a description of the violation.
type commandLint func(cmd *cobra.Command) string

func runCommandLint(t *testing.T, lint commandLint) {
	t.Helper()

	var violations []string
	forEachCommand(newRootCmd(), func(cmd *cobra.Command) {
		if v := lint(cmd); v != "" {
			violations = append(violations, cmd.CommandPath()+": "+v)
		}
	})

	if len(violations) > 0 {
		t.Errorf("convention violations:\n  %s", strings.Join(violations, "\n  "))
	}
}

func TestAllRunnableCommandsHaveExample(t *testing.T) {
	runCommandLint(t, func(cmd *cobra.Command) string {
		if cmd.Runnable() && strings.TrimSpace(cmd.Example) == "" {
			return "missing Example"
		}
		return ""
	})
}

func TestAllRunnableCommandsHaveLong(t *testing.T) {
	runCommandLint(t, func(cmd *cobra.Command) string {
		if cmd.Runnable() && strings.TrimSpace(cmd.Long) == "" {
			return "missing Long description"
		}
		return ""
	})
}

func TestLongDescriptionNoEmbeddedExamples(t *testing.T) {
	runCommandLint(t, func(cmd *cobra.Command) string {
		if strings.Contains(cmd.Long, "Example:") || strings.Contains(cmd.Long, "```") {
			return "example text belongs in the Example field, not Long"
		}
		return ""
	})
}

func TestForceFlagsHaveShortF(t *testing.T) {
	runCommandLint(t, func(cmd *cobra.Command) string {
		f := cmd.Flags().Lookup("force")
		if f != nil && f.Shorthand != "f" {
			return "--force without -f shorthand"
		}
		return ""
	})
}

func TestShortDescriptionsAreConcise(t *testing.T) {
	const maxLen = 60

	runCommandLint(t, func(cmd *cobra.Command) string {
		if len(cmd.Short) > maxLen {
			return fmt.Sprintf("Short is %d chars (max %d): %q", len(cmd.Short), maxLen, cmd.Short)
		}
		return ""
	})
}

func TestShortDescriptionsStyle(t *testing.T) {
	runCommandLint(t, func(cmd *cobra.Command) string {
		if cmd.Short == "" {
			return ""
		}
		if !unicode.IsUpper([]rune(cmd.Short)[0]) {
			return fmt.Sprintf("Short starts lowercase: %q", cmd.Short)
		}
		if strings.HasSuffix(cmd.Short, ".") {
			return fmt.Sprintf("Short ends with a period: %q", cmd.Short)
		}
		return ""
	})
}

// Data-producing commands must make a recorded decision about --json
// support: list each one here, either as supported or deferred.
func TestDataCommandsSupportJSON(t *testing.T) {
	jsonSupported := map[string]bool{
		"nautex status":             true,
		"nautex config show":        true,
		"nautex integration status": true,
		"nautex version":            true,
	}
	jsonDeferred := map[string]bool{}

	dataVerbs := map[string]bool{
		"list":   true,
		"info":   true,
		"status": true,
		"show":   true,
		"get":    true,
	}

	runCommandLint(t, func(cmd *cobra.Command) string {
		if !cmd.Runnable() {
			return ""
		}

		fields := strings.Fields(cmd.CommandPath())
		if !dataVerbs[fields[len(fields)-1]] {
			return ""
		}

		if !jsonSupported[cmd.CommandPath()] && !jsonDeferred[cmd.CommandPath()] {
			return "data command not registered in jsonSupported or jsonDeferred"
		}
		return ""
	})
}

func TestNoShortFlagCollisions(t *testing.T) {
	runCommandLint(t, func(cmd *cobra.Command) string {
		seen := map[string]string{}
		var collision string

		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if f.Shorthand == "" {
				return
			}
			if prior, ok := seen[f.Shorthand]; ok && collision == "" {
				collision = fmt.Sprintf("-%s claimed by both --%s and --%s", f.Shorthand, prior, f.Name)
			}
			seen[f.Shorthand] = f.Name
		})

		return collision
	})
}

func TestFlagNamesAreKebabCase(t *testing.T) {
	kebab := regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

	runCommandLint(t, func(cmd *cobra.Command) string {
		var bad []string
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if !kebab.MatchString(f.Name) {
				bad = append(bad, "--"+f.Name)
			}
		})

		if len(bad) > 0 {
			return "flags not kebab-case: " + strings.Join(bad, ", ")
		}
		return ""
	})
}
