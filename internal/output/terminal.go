package output

import (
	"os"

	"golang.org/x/term"
)

// Terminal holds terminal capability information for the current process.
type Terminal struct {
	IsTTY     bool
	NoColor   bool
	Width     int
	Height    int
	ForceFlag bool // Set when --no-color flag is used
}

// DetectTerminal inspects stdout and the environment for terminal capabilities.
func DetectTerminal() *Terminal {
	stdoutFD := int(os.Stdout.Fd())
	isTTY := term.IsTerminal(stdoutFD)

	width, height := 80, 24 // sensible defaults

	if isTTY {
		if w, h, err := term.GetSize(stdoutFD); err == nil {
			width, height = w, h
		}
	}

	// NO_COLOR convention (https://no-color.org/), plus TERM=dumb
	_, noColor := os.LookupEnv("NO_COLOR")
	if os.Getenv("TERM") == "dumb" {
		noColor = true
	}

	return &Terminal{
		IsTTY:   isTTY,
		NoColor: noColor,
		Width:   width,
		Height:  height,
	}
}

// ColorEnabled returns true if colored output should be used.
func (t *Terminal) ColorEnabled() bool {
	if t.ForceFlag {
		return false
	}

	return t.IsTTY && !t.NoColor
}

// InteractiveEnabled returns true if interactive prompts are allowed.
func (t *Terminal) InteractiveEnabled() bool {
	return t.IsTTY
}

// SpinnersEnabled returns true if spinners should be used.
func (t *Terminal) SpinnersEnabled() bool {
	return t.IsTTY && !t.NoColor
}
