// Package output handles terminal output for the Nautex CLI.
//
// Commands never write to os.Stdout directly; they go through a Writer so
// that tests can capture output, --json and --quiet behave uniformly, and
// stdout stays untouched when the MCP protocol owns it. Colors and spinner
// animations degrade to plain text off a TTY.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Status symbols used by the status-line helpers.
const (
	CheckMark   = "✓"
	XMark       = "✗"
	WarningMark = "⚠"
	InfoMark    = "ℹ"
)

// palette holds the color styles for each message tone.
type palette struct {
	success *color.Color
	failure *color.Color
	warning *color.Color
	info    *color.Color
	muted   *color.Color
}

func newPalette() palette {
	return palette{
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		warning: color.New(color.FgYellow),
		info:    color.New(color.FgCyan),
		muted:   color.New(color.FgHiBlack),
	}
}

// Writer is the CLI's output surface.
type Writer struct {
	Out     io.Writer
	Err     io.Writer
	JSON    bool
	Quiet   bool
	Verbose bool
	NoInput bool

	terminal *Terminal
	colors   palette
}

// Default returns a Writer bound to the process stdout/stderr.
func Default() *Writer {
	return NewWriter(os.Stdout, os.Stderr, DetectTerminal())
}

// NewWriter creates a Writer over the given streams and terminal info.
func NewWriter(out, err io.Writer, term *Terminal) *Writer {
	if !term.ColorEnabled() {
		color.NoColor = true
	}
	return &Writer{
		Out:      out,
		Err:      err,
		terminal: term,
		colors:   newPalette(),
	}
}

type contextKey struct{}

// WithContext stores the Writer in the context for command handlers.
func (w *Writer) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, w)
}

// FromContext retrieves the Writer from context, falling back to Default.
func FromContext(ctx context.Context) *Writer {
	if w, ok := ctx.Value(contextKey{}).(*Writer); ok {
		return w
	}
	return Default()
}

// Terminal returns the detected terminal info.
func (w *Writer) Terminal() *Terminal {
	return w.terminal
}

// SetNoColor disables colored output for this process.
func (w *Writer) SetNoColor(disabled bool) {
	w.terminal.ForceFlag = disabled
	if disabled {
		color.NoColor = true
	}
}

// Print writes formatted text to stdout. Suppressed in quiet mode.
func (w *Writer) Print(format string, args ...interface{}) {
	if w.Quiet {
		return
	}
	fmt.Fprintf(w.Out, format, args...)
}

// Println writes a line to stdout. Suppressed in quiet mode.
func (w *Writer) Println(args ...interface{}) {
	if w.Quiet {
		return
	}
	fmt.Fprintln(w.Out, args...)
}

// PrintJSON encodes v as indented JSON on stdout. Not subject to quiet
// mode: JSON output is the requested payload, not decoration.
func (w *Writer) PrintJSON(v interface{}) error {
	enc := json.NewEncoder(w.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Error writes formatted text to stderr.
func (w *Writer) Error(format string, args ...interface{}) {
	fmt.Fprintf(w.Err, format, args...)
}

// Errorln writes a line to stderr.
func (w *Writer) Errorln(args ...interface{}) {
	fmt.Fprintln(w.Err, args...)
}

// Write implements io.Writer over Out, honoring quiet mode.
func (w *Writer) Write(p []byte) (int, error) {
	if w.Quiet {
		return len(p), nil
	}
	return w.Out.Write(p)
}

// Debug writes muted diagnostic text, only in verbose mode.
func (w *Writer) Debug(format string, args ...interface{}) {
	if !w.Verbose {
		return
	}
	w.colors.muted.Fprintf(w.Out, "[debug] "+format+"\n", args...)
}

// statusLine prints "symbol message" with the symbol in the given tone when
// colors are on, or as plain text otherwise.
func (w *Writer) statusLine(dst io.Writer, tone *color.Color, symbol, message string) {
	if w.terminal.ColorEnabled() {
		tone.Fprint(dst, symbol+" ")
		fmt.Fprintln(dst, message)
		return
	}
	fmt.Fprintln(dst, symbol+" "+message)
}

// Success prints a checkmark line to stdout.
func (w *Writer) Success(format string, args ...interface{}) {
	if w.Quiet {
		return
	}
	w.statusLine(w.Out, w.colors.success, CheckMark, fmt.Sprintf(format, args...))
}

// Failure prints an X line to stderr. Not suppressed by quiet mode.
func (w *Writer) Failure(format string, args ...interface{}) {
	w.statusLine(w.Err, w.colors.failure, XMark, fmt.Sprintf(format, args...))
}

// Warning prints a warning line to stdout.
func (w *Writer) Warning(format string, args ...interface{}) {
	if w.Quiet {
		return
	}
	w.statusLine(w.Out, w.colors.warning, WarningMark, fmt.Sprintf(format, args...))
}

// Info prints an informational line to stdout.
func (w *Writer) Info(format string, args ...interface{}) {
	if w.Quiet {
		return
	}
	w.statusLine(w.Out, w.colors.info, InfoMark, fmt.Sprintf(format, args...))
}

// Muted prints gray text to stdout.
func (w *Writer) Muted(format string, args ...interface{}) {
	if w.Quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if w.terminal.ColorEnabled() {
		w.colors.muted.Fprintln(w.Out, msg)
		return
	}
	fmt.Fprintln(w.Out, msg)
}

// Spinner returns a spinner for a long-running step. Off a TTY or in quiet
// mode, it degrades to plain "message... done" text.
func (w *Writer) Spinner(message string) *Spinner {
	if w.Quiet || !w.terminal.SpinnersEnabled() {
		return &Spinner{plain: true, message: message, writer: w}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Writer = w.Out
	s.Suffix = " " + message

	return &Spinner{spin: s, message: message, writer: w}
}

// Spinner animates a long operation, with a plain-text fallback.
type Spinner struct {
	spin    *spinner.Spinner
	message string
	writer  *Writer
	plain   bool
}

// Start begins the animation, or prints the message in plain mode.
func (s *Spinner) Start() {
	if s.plain {
		s.writer.Print("%s... ", s.message)
		return
	}
	s.spin.Start()
}

// Stop halts the animation without a closing line.
func (s *Spinner) Stop() {
	if !s.plain {
		s.spin.Stop()
	}
}

func (s *Spinner) finish(plainSuffix, message string, report func(string, ...interface{})) {
	if s.plain {
		s.writer.Println(plainSuffix)
	} else {
		s.spin.Stop()
	}
	if message != "" {
		report("%s", message)
	}
}

// StopWithSuccess halts the spinner and prints a success line.
func (s *Spinner) StopWithSuccess(message string) {
	s.finish("done", message, s.writer.Success)
}

// StopWithFailure halts the spinner and prints a failure line.
func (s *Spinner) StopWithFailure(message string) {
	s.finish("failed", message, s.writer.Failure)
}

// StopWithWarning halts the spinner and prints a warning line.
func (s *Spinner) StopWithWarning(message string) {
	s.finish("warning", message, s.writer.Warning)
}

// UpdateMessage changes the text shown next to the spinner.
func (s *Spinner) UpdateMessage(message string) {
	s.message = message
	if !s.plain {
		s.spin.Suffix = " " + message
	}
}
