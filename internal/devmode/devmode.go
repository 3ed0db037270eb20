// Package devmode toggles the mod's development flag by commenting or
// uncommenting a single Lua line such as "devmode = true".
package devmode

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ariel-frischer/modkit/internal/fileutil"
)

const (
	DefaultFlag          = "devmode = true"
	DefaultCommentPrefix = "--"
)

// ErrFlagNotFound is returned when the file has no line starting with the
// flag, commented or not.
var ErrFlagNotFound = errors.New("dev-mode flag line not found")

// State is the observed state of the flag line.
type State int

const (
	StateUnknown State = iota
	StateEnabled
	StateDisabled
)

func (s State) String() string {
	switch s {
	case StateEnabled:
		return "enabled"
	case StateDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Options selects the flag text and the comment prefix.
type Options struct {
	Flag          string
	CommentPrefix string
}

func (o Options) withDefaults() Options {
	if o.Flag == "" {
		o.Flag = DefaultFlag
	}
	if o.CommentPrefix == "" {
		o.CommentPrefix = DefaultCommentPrefix
	}
	return o
}

// Detect reports whether the flag is currently active in content. Only
// lines starting in column one count.
func Detect(content string, opts Options) State {
	opts = opts.withDefaults()
	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, opts.Flag):
			return StateEnabled
		case strings.HasPrefix(line, opts.CommentPrefix+opts.Flag):
			return StateDisabled
		}
	}
	return StateUnknown
}

// Rewrite comments (enabled=false) or uncomments (enabled=true) every
// column-one flag line and returns the new content with the number of
// lines changed.
func Rewrite(content string, enabled bool, opts Options) (string, int) {
	opts = opts.withDefaults()
	commented := opts.CommentPrefix + opts.Flag

	lines := strings.SplitAfter(content, "\n")
	changed := 0
	for i, line := range lines {
		switch {
		case !enabled && strings.HasPrefix(line, opts.Flag):
			lines[i] = opts.CommentPrefix + line
			changed++
		case enabled && strings.HasPrefix(line, commented):
			lines[i] = strings.TrimPrefix(line, opts.CommentPrefix)
			changed++
		}
	}
	return strings.Join(lines, ""), changed
}

// Set rewrites the file at path so the flag matches enabled. It returns
// false without writing when the flag is already in that state.
func Set(path string, enabled bool, opts Options) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading dev-mode file: %w", err)
	}

	content := string(data)
	if Detect(content, opts) == StateUnknown {
		return false, fmt.Errorf("%s: %w", path, ErrFlagNotFound)
	}

	updated, changed := Rewrite(content, enabled, opts)
	if changed == 0 {
		return false, nil
	}

	if err := fileutil.WriteAtomic(path, []byte(updated)); err != nil {
		return false, fmt.Errorf("writing dev-mode file: %w", err)
	}
	return true, nil
}
