package changelog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// CategoryStyle defines the color and icon for a changelog category.
type CategoryStyle struct {
	Color *color.Color
	Icon  string
}

// categoryStyles maps lower-cased category names to their terminal styling.
var categoryStyles = map[string]CategoryStyle{
	"features": {Color: color.New(color.FgGreen), Icon: "✓"},
	"changes":  {Color: color.New(color.FgBlue), Icon: "~"},
	"bugfixes": {Color: color.New(color.FgYellow), Icon: "⚡"},
}

var defaultStyle = CategoryStyle{Color: color.New(color.FgCyan), Icon: "•"}

func styleFor(category string) CategoryStyle {
	if s, ok := categoryStyles[strings.ToLower(category)]; ok {
		return s
	}
	return defaultStyle
}

// FormatOptions controls the terminal output formatting.
type FormatOptions struct {
	Plain    bool // Disable colors and icons
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

// FormatTerminal writes changelog entries to the writer with terminal styling.
func FormatTerminal(entries []Entry, w io.Writer, opts FormatOptions) error {
	for i := range entries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := FormatEntry(&entries[i], w, opts); err != nil {
			return fmt.Errorf("formatting version %s: %w", entries[i].Version, err)
		}
	}
	return nil
}

// FormatEntry writes a single entry's header and its non-empty categories.
func FormatEntry(e *Entry, w io.Writer, opts FormatOptions) error {
	width := resolveWidth(opts.MaxWidth)

	if err := writeVersionHeader(e, w, opts); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, s := range e.Sections {
		if len(s.Items) == 0 {
			continue
		}
		if err := writeCategorySection(s, w, opts, width); err != nil {
			return err
		}
	}
	return nil
}

// ExportYAML writes the parsed changelog as YAML.
func ExportYAML(c *Changelog, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding changelog YAML: %w", err)
	}
	return enc.Close()
}

// writeVersionHeader writes the version header line.
func writeVersionHeader(e *Entry, w io.Writer, opts FormatOptions) error {
	var header string
	switch {
	case e.IsPlaceholder():
		header = "In development"
	case e.Date != "":
		header = fmt.Sprintf("v%s (%s)", e.Version, e.Date)
	default:
		header = fmt.Sprintf("v%s", e.Version)
	}

	if opts.Plain {
		_, err := fmt.Fprintf(w, "## %s\n", header)
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	_, err := fmt.Fprintf(w, "## %s\n", bold(header))
	return err
}

// writeCategorySection writes a single category with its items.
func writeCategorySection(s Section, w io.Writer, opts FormatOptions, width int) error {
	style := styleFor(s.Name)

	if opts.Plain {
		if _, err := fmt.Fprintf(w, "\n### %s\n", s.Name); err != nil {
			return err
		}
	} else {
		colored := style.Color.SprintFunc()
		if _, err := fmt.Fprintf(w, "\n%s %s\n", colored(style.Icon), colored(s.Name)); err != nil {
			return err
		}
	}

	for _, text := range s.Items {
		if err := writeItem(text, style, w, opts, width); err != nil {
			return err
		}
	}
	return nil
}

// writeItem writes a single bullet with optional wrapping.
func writeItem(text string, style CategoryStyle, w io.Writer, opts FormatOptions, width int) error {
	prefix := "  - "

	if opts.Plain {
		_, err := fmt.Fprintf(w, "%s%s\n", prefix, text)
		return err
	}

	wrapped := wrapText(text, width-len(prefix), "    ")
	colored := style.Color.SprintFunc()
	_, err := fmt.Fprintf(w, "%s%s\n", prefix, colored(wrapped))
	return err
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText wraps text to fit within maxWidth, using indent for continuation lines.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || len(text) <= maxWidth {
		return text
	}

	var lines []string
	remaining := text

	for len(remaining) > maxWidth {
		breakPoint := maxWidth
		for i := maxWidth - 1; i > 0; i-- {
			if remaining[i] == ' ' {
				breakPoint = i
				break
			}
		}

		lines = append(lines, remaining[:breakPoint])
		remaining = strings.TrimLeft(remaining[breakPoint:], " ")
	}

	if len(remaining) > 0 {
		lines = append(lines, remaining)
	}

	return strings.Join(lines, "\n"+indent)
}
