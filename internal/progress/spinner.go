package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Reporter prints one line per finished step and animates a spinner for
// slow ones when attached to a terminal.
type Reporter struct {
	out     io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols
}

// NewReporter creates a reporter writing to out.
func NewReporter(out io.Writer, caps TerminalCapabilities) *Reporter {
	return &Reporter{out: out, caps: caps, symbols: SelectSymbols(caps)}
}

// Success prints "✓ message".
func (r *Reporter) Success(message string) {
	r.line(r.symbols.Checkmark, color.FgGreen, message)
}

// Failure prints "✗ message".
func (r *Reporter) Failure(message string) {
	r.line(r.symbols.Failure, color.FgRed, message)
}

func (r *Reporter) line(symbol string, attr color.Attribute, message string) {
	if r.caps.SupportsColor {
		symbol = color.New(attr, color.Bold).Sprint(symbol)
	}
	fmt.Fprintf(r.out, "%s %s\n", symbol, message)
}

// Run executes fn behind a spinner labelled message and reports the outcome.
// Without a TTY the spinner is skipped and only the outcome line is printed.
func (r *Reporter) Run(message string, fn func() error) error {
	var s *spinner.Spinner
	if r.caps.IsTTY {
		s = spinner.New(spinner.CharSets[r.symbols.SpinnerSet], 100*time.Millisecond, spinner.WithWriter(r.out))
		s.Suffix = " " + message
		s.Start()
	}

	err := fn()

	if s != nil {
		s.Stop()
	}
	if err != nil {
		r.Failure(message)
		return err
	}
	r.Success(message)
	return nil
}
