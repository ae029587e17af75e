// Package prompt provides interactive prompts for the nautex CLI.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/nautex-dev/nautex/internal/api"
	"github.com/nautex-dev/nautex/internal/output"
)

// Prompter handles interactive prompts.
type Prompter struct {
	out    *output.Writer
	reader *bufio.Reader
}

// New creates a new Prompter reading from stdin.
func New(out *output.Writer) *Prompter {
	return NewWithReader(out, os.Stdin)
}

// NewWithReader creates a Prompter reading from the given source.
func NewWithReader(out *output.Writer, in io.Reader) *Prompter {
	return &Prompter{
		out:    out,
		reader: bufio.NewReader(in),
	}
}

// CanPrompt returns true if interactive prompts are available.
func (p *Prompter) CanPrompt() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && !p.out.NoInput
}

// Confirm prompts for a yes/no confirmation.
func (p *Prompter) Confirm(message string, defaultValue bool) (bool, error) {
	defaultStr := "y/N"
	if defaultValue {
		defaultStr = "Y/n"
	}

	p.out.Print("%s [%s]: ", message, defaultStr)

	input, err := p.reader.ReadString('\n')
	if err != nil {
		return defaultValue, fmt.Errorf("failed to read input: %w", err)
	}

	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return defaultValue, nil
	}

	return input == "y" || input == "yes", nil
}

// Line prompts for a single line of input and returns it trimmed.
func (p *Prompter) Line(message string) (string, error) {
	p.out.Print("%s: ", message)

	input, err := p.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimSpace(input), nil
}

// Token prompts for an API token with hidden input. Falls back to a plain
// line read when stdin is not a terminal.
func (p *Prompter) Token(message string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return p.Line(message)
	}

	p.out.Print("%s: ", message)

	token, err := term.ReadPassword(int(os.Stdin.Fd()))
	p.out.Println()

	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	return strings.TrimSpace(string(token)), nil
}

// Select prompts the user to select from a list of options and returns the
// chosen index.
func (p *Prompter) Select(message string, options []string) (int, error) {
	p.out.Println(message)
	for i, opt := range options {
		p.out.Print("  [%d] %s\n", i+1, opt)
	}
	p.out.Println()

	for {
		p.out.Print("Select [1-%d]: ", len(options))

		input, err := p.reader.ReadString('\n')
		if err != nil {
			return -1, fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		num, err := strconv.Atoi(input)
		if err != nil || num < 1 || num > len(options) {
			p.out.Warning("Invalid selection. Please enter a number between 1 and %d", len(options))
			continue
		}

		return num - 1, nil
	}
}

// SelectProject prompts the user to pick a project.
func (p *Prompter) SelectProject(projects []api.Project) (*api.Project, error) {
	if len(projects) == 0 {
		return nil, fmt.Errorf("no projects to select from")
	}
	if len(projects) == 1 {
		p.out.Info("Using project %s (%s)", projects[0].Name, projects[0].ProjectID)
		return &projects[0], nil
	}

	options := make([]string, 0, len(projects))
	for _, proj := range projects {
		label := fmt.Sprintf("%-12s %s", proj.ProjectID, proj.Name)
		if proj.Description != "" {
			label += " - " + proj.Description
		}
		options = append(options, label)
	}

	idx, err := p.Select("Available projects:", options)
	if err != nil {
		return nil, err
	}

	return &projects[idx], nil
}

// SelectPlan prompts the user to pick an implementation plan.
func (p *Prompter) SelectPlan(plans []api.Plan) (*api.Plan, error) {
	if len(plans) == 0 {
		return nil, fmt.Errorf("no plans to select from")
	}
	if len(plans) == 1 {
		p.out.Info("Using plan %s (%s)", plans[0].Name, plans[0].PlanID)
		return &plans[0], nil
	}

	options := make([]string, 0, len(plans))
	for _, plan := range plans {
		label := fmt.Sprintf("%-12s %s", plan.PlanID, plan.Name)
		if plan.Description != "" {
			label += " - " + plan.Description
		}
		options = append(options, label)
	}

	idx, err := p.Select("Available implementation plans:", options)
	if err != nil {
		return nil, err
	}

	return &plans[idx], nil
}
