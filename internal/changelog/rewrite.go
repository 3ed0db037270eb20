package changelog

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ariel-frischer/modkit/internal/fileutil"
)

// MissingLineError is returned when the changelog has no line of the kind
// a rewrite needs to touch.
type MissingLineError struct {
	Kind string // "Version" or "Date"
}

func (e *MissingLineError) Error() string {
	return fmt.Sprintf("changelog has no %s line to finalize", e.Kind)
}

// Template describes the blank entry prepended for the next development cycle.
type Template struct {
	PlaceholderVersion string
	PlaceholderDate    string
	Sections           []string
}

// DefaultTemplate returns the template used when nothing is configured.
func DefaultTemplate() Template {
	return Template{
		PlaceholderVersion: DefaultPlaceholderVersion,
		PlaceholderDate:    DefaultPlaceholderDate,
		Sections:           append([]string(nil), DefaultSections...),
	}
}

// Render returns the template as changelog text, ending with a blank line.
func (t Template) Render() string {
	var sb strings.Builder
	sb.WriteString(Separator + "\n")
	sb.WriteString("Version: " + t.PlaceholderVersion + "\n")
	sb.WriteString("Date: " + t.PlaceholderDate + "\n")
	for _, s := range t.Sections {
		sb.WriteString("  " + s + ":\n")
		sb.WriteString("    - \n")
	}
	sb.WriteString("\n")
	return sb.String()
}

// FinalizeContent rewrites the "Version:" and "Date:" lines of the topmost
// entry of content to the given values. The entry ends at the next separator
// or the next "Version:" line; lines of older entries are never touched.
// Every other line, including line endings, is carried over unchanged.
func FinalizeContent(content []byte, newVersion string, date time.Time) ([]byte, error) {
	lines := strings.SplitAfter(string(content), "\n")

	versionDone, dateDone := false, false
	separators := 0
scan:
	for i, line := range lines {
		if versionDone && dateDone {
			break
		}
		body, ending := splitLineEnding(line)
		switch {
		case separatorLine.MatchString(body):
			separators++
			if separators > 1 || versionDone || dateDone {
				break scan
			}
		case versionLine.MatchString(body):
			if versionDone {
				break scan
			}
			lines[i] = "Version: " + newVersion + ending
			versionDone = true
		case !dateDone && dateLine.MatchString(body):
			lines[i] = "Date: " + date.Format(DateLayout) + ending
			dateDone = true
		}
	}

	if !versionDone {
		return nil, &MissingLineError{Kind: "Version"}
	}
	if !dateDone {
		return nil, &MissingLineError{Kind: "Date"}
	}
	return []byte(strings.Join(lines, "")), nil
}

// FinalizeChangelogEntry rewrites the topmost entry of the changelog at path
// for a release: its Version line gets newVersion and its Date line gets date. The file is read whole, transformed, and replaced atomically.
func FinalizeChangelogEntry(path, newVersion string, date time.Time) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading changelog: %w", err)
	}

	updated, err := FinalizeContent(content, newVersion, date)
	if err != nil {
		return fmt.Errorf("finalizing %s: %w", path, err)
	}

	if err := fileutil.WriteAtomic(path, updated); err != nil {
		return fmt.Errorf("writing changelog: %w", err)
	}
	return nil
}

// Prepend inserts the rendered template at the top of the changelog at
// path. A missing changelog is created.
func Prepend(path string, tmpl Template) error {
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading changelog: %w", err)
	}

	updated := append([]byte(tmpl.Render()), content...)
	if err := fileutil.WriteAtomic(path, updated); err != nil {
		return fmt.Errorf("writing changelog: %w", err)
	}
	return nil
}

// splitLineEnding separates a line produced by strings.SplitAfter into its
// text and its terminator ("\n", "\r\n" or "").
func splitLineEnding(line string) (string, string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	default:
		return line, ""
	}
}
