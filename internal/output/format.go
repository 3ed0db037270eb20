// Package output provides terminal output helpers for the modkit CLI.
// It only depends on color and term packages.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// GetTerminalWidth returns the terminal width, defaulting to 80 if unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// PrintCommandHeader prints a bold cyan header such as
// "release factoryplanner 0.17.21 → 0.17.22".
func PrintCommandHeader(out io.Writer, command, detail string) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	white := color.New(color.FgWhite, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", cyan(command), white(detail))
}

// PrintWarning prints a yellow warning line.
func PrintWarning(out io.Writer, message string) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", yellow("!"), message)
}

// PrintList prints a dim heading followed by indented items.
func PrintList(out io.Writer, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintln(out, dim(heading))
	for _, item := range items {
		fmt.Fprintf(out, "  %s\n", item)
	}
}

// Rule returns a horizontal line of the given width.
func Rule(width int) string {
	if width < 3 {
		width = 3
	}
	return strings.Repeat("─", width)
}
