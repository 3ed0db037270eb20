package changelog

import "strings"

// DateLayout is the Go time layout of the changelog "Date:" line ("DD. MM. YYYY").
const DateLayout = "02. 01. 2006"

// Separator is the line that opens every changelog entry.
var Separator = strings.Repeat("-", 99)

// Default placeholders written into a freshly prepended entry.
const (
	DefaultPlaceholderVersion = "0.00.00"
	DefaultPlaceholderDate    = "00. 00. 0000"
)

// DefaultSections are the categories of a blank entry, in order.
var DefaultSections = []string{"Features", "Changes", "Bugfixes"}

// Changelog is the parsed content of a changelog.txt, newest entry first.
type Changelog struct {
	Entries []Entry `yaml:"entries"`
}

// Entry is one released (or in-development) version.
type Entry struct {
	Version  string    `yaml:"version"`
	Date     string    `yaml:"date,omitempty"`
	Sections []Section `yaml:"sections,omitempty"`
}

// Section is one category of an entry, e.g. "Features".
type Section struct {
	Name  string   `yaml:"name"`
	Items []string `yaml:"items,omitempty"`
}

// IsPlaceholder reports whether the entry still carries the blank template's
// version or date, i.e. it has not been finalized for a release yet.
func (e Entry) IsPlaceholder() bool {
	return e.Date == DefaultPlaceholderDate || strings.Trim(e.Version, "0.") == ""
}

// Count returns the number of non-empty bullet items across all sections.
func (e Entry) Count() int {
	n := 0
	for _, s := range e.Sections {
		n += len(s.Items)
	}
	return n
}
