// Package prompt asks the user yes/no questions and numbered choices on the
// console.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	// ErrNonInteractive is returned by Choose when stdin is not a terminal.
	ErrNonInteractive = errors.New("no terminal available for an interactive choice")
	// ErrInvalidChoice is returned by Choose for input outside the listed options.
	ErrInvalidChoice = errors.New("invalid choice")
)

// Prompter asks questions.
type Prompter interface {
	Confirm(question string) bool
	Choose(question string, options []string) (int, error)
}

// Console is a Prompter reading answers line by line.
type Console struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// New returns a Console on stdin/stdout. It answers "no" to every
// confirmation when stdin is not a terminal.
func New() *Console {
	return NewWithIO(os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdin.Fd())))
}

// NewWithIO returns a Console reading from in and writing to out.
func NewWithIO(in io.Reader, out io.Writer, interactive bool) *Console {
	return &Console{in: bufio.NewReader(in), out: out, interactive: interactive}
}

// Confirm prints question with a [y/N] suffix and reports whether the
// answer was y or yes.
func (c *Console) Confirm(question string) bool {
	if !c.interactive {
		fmt.Fprintf(c.out, "→ %s no [non-interactive mode]\n", question)
		return false
	}

	fmt.Fprintf(c.out, "%s [y/N] ", question)

	input, err := c.in.ReadString('\n')
	if err != nil && input == "" {
		return false
	}

	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

// Choose lists options numbered from 1 and returns the zero-based index of
// the selected one.
func (c *Console) Choose(question string, options []string) (int, error) {
	if !c.interactive {
		return -1, ErrNonInteractive
	}
	if len(options) == 0 {
		return -1, fmt.Errorf("%w: nothing to choose from", ErrInvalidChoice)
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	for i, opt := range options {
		fmt.Fprintf(c.out, "%s %s\n", cyan(fmt.Sprintf("[%d]", i+1)), opt)
	}
	fmt.Fprintf(c.out, "%s ", question)

	input, err := c.in.ReadString('\n')
	if err != nil && input == "" {
		return -1, fmt.Errorf("reading choice: %w", err)
	}

	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > len(options) {
		return -1, fmt.Errorf("%w: %q", ErrInvalidChoice, strings.TrimSpace(input))
	}
	return n - 1, nil
}

// Auto is a Prompter that confirms everything and never chooses.
type Auto struct{}

func (Auto) Confirm(string) bool { return true }

func (Auto) Choose(string, []string) (int, error) { return -1, ErrNonInteractive }
