// Package version models the mod's release version: an ordered tuple of
// non-negative integers written as "0.17.21" in info.json, the changelog and
// the migration master list, and as "0_17_21" in migration filenames.
//
// This package has no dependencies on other internal packages and can be
// safely imported from any of them.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a version string that cannot be read as dot- or
// underscore-separated non-negative integers.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("invalid version: %s", e.Reason)
	}
	return fmt.Sprintf("invalid version %q: %s", e.Input, e.Reason)
}

// Version is an ordered tuple of numeric components, most significant first.
type Version struct {
	parts []int
	// width keeps zero-padding of each component ("0.17.01") so that
	// re-serialization matches what was read.
	width []int
}

// Parse reads a dot-separated version such as "0.17.21".
func Parse(s string) (Version, error) {
	return parse(s, ".")
}

// ParseUnderscore reads an underscore-separated version such as "0_17_21".
func ParseUnderscore(s string) (Version, error) {
	return parse(s, "_")
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func parse(s, sep string) (Version, error) {
	if strings.TrimSpace(s) == "" {
		return Version{}, &ParseError{Input: s, Reason: "empty version string"}
	}

	fields := strings.Split(s, sep)
	v := Version{
		parts: make([]int, len(fields)),
		width: make([]int, len(fields)),
	}
	for i, f := range fields {
		if f == "" {
			return Version{}, &ParseError{Input: s, Reason: fmt.Sprintf("component %d is empty", i+1)}
		}
		for _, r := range f {
			if r < '0' || r > '9' {
				return Version{}, &ParseError{Input: s, Reason: fmt.Sprintf("component %q is not a non-negative integer", f)}
			}
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return Version{}, &ParseError{Input: s, Reason: err.Error()}
		}
		v.parts[i] = n
		v.width[i] = len(f)
	}
	return v, nil
}

// Bump returns a copy with the final component incremented by one.
// All other components are left unchanged.
func (v Version) Bump() Version {
	if len(v.parts) == 0 {
		return v
	}
	next := v.clone()
	last := len(next.parts) - 1
	next.parts[last]++
	next.width[last] = 0
	return next
}

// IsZero reports whether v holds no components.
func (v Version) IsZero() bool {
	return len(v.parts) == 0
}

// String renders the dot-joined form used in info.json and the changelog.
func (v Version) String() string {
	return v.join(".")
}

// Underscore renders the underscore-joined form used in migration filenames.
func (v Version) Underscore() string {
	return v.join("_")
}

func (v Version) join(sep string) string {
	strs := make([]string, len(v.parts))
	for i, p := range v.parts {
		strs[i] = fmt.Sprintf("%0*d", v.width[i], p)
	}
	return strings.Join(strs, sep)
}

func (v Version) clone() Version {
	c := Version{
		parts: make([]int, len(v.parts)),
		width: make([]int, len(v.width)),
	}
	copy(c.parts, v.parts)
	copy(c.width, v.width)
	return c
}
