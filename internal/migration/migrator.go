package migration

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ariel-frischer/modkit/internal/fileutil"
	"github.com/ariel-frischer/modkit/internal/version"
)

// Mode selects how the generated regions of migrator.lua are located.
type Mode string

const (
	// ModeMarkers replaces only the lines between begin/end comment markers.
	ModeMarkers Mode = "markers"
	// ModeLegacy strips every line that looks generated and reinserts
	// fresh lines: requires at the top of the file, table rows after the
	// "migration_masterlist = {" line. Unrelated lines that happen to match
	// are lost.
	ModeLegacy Mode = "legacy"
)

// Region markers used in ModeMarkers. A marker line must contain nothing
// but the marker text and optional indentation.
const (
	RequiresBegin   = "-- modkit:requires:begin"
	RequiresEnd     = "-- modkit:requires:end"
	MasterlistBegin = "-- modkit:masterlist:begin"
	MasterlistEnd   = "-- modkit:masterlist:end"
)

const (
	// DefaultRequireFormat renders one require line; %s is the underscore version.
	DefaultRequireFormat = `require("data.migrations.migration_%s")`
	// DefaultEntryFormat renders one table row; %d is the 1-based index and
	// %s the dotted version.
	DefaultEntryFormat = `[%d] = {version="%s"},`

	legacyTableAnchor = "migration_masterlist = {"
	legacyEntryIndent = "    "
)

var legacyEntryLine = regexp.MustCompile(`^\s+\[\d+\] = \{version=.+\},?$`)

// MarkerError reports a missing or malformed generated region.
type MarkerError struct {
	Marker  string
	Problem string
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("migrator marker %q: %s", e.Marker, e.Problem)
}

// IndexOptions configures migrator index regeneration.
type IndexOptions struct {
	Mode          Mode
	RequireFormat string
	EntryFormat   string
}

func (o IndexOptions) withDefaults() IndexOptions {
	if o.Mode == "" {
		o.Mode = ModeMarkers
	}
	if o.RequireFormat == "" {
		o.RequireFormat = DefaultRequireFormat
	}
	if o.EntryFormat == "" {
		o.EntryFormat = DefaultEntryFormat
	}
	return o
}

// RegenerateMigratorIndex rewrites the require lines and the numbered
// version table of the migrator at path so that both list every master-list
// version once, in master-list order.
func RegenerateMigratorIndex(path string, list Masterlist, opts IndexOptions) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading migrator: %w", err)
	}

	updated, err := RegenerateContent(string(content), list, opts)
	if err != nil {
		return fmt.Errorf("regenerating %s: %w", path, err)
	}

	if err := fileutil.WriteAtomic(path, []byte(updated)); err != nil {
		return fmt.Errorf("writing migrator: %w", err)
	}
	return nil
}

// RegenerateContent is RegenerateMigratorIndex on an in-memory file.
func RegenerateContent(content string, list Masterlist, opts IndexOptions) (string, error) {
	opts = opts.withDefaults()

	requires, entries, err := generatedLines(list, opts)
	if err != nil {
		return "", err
	}

	switch opts.Mode {
	case ModeMarkers:
		return regenerateMarked(content, requires, entries)
	case ModeLegacy:
		return regenerateLegacy(content, requires, entries)
	default:
		return "", fmt.Errorf("unknown migrator mode %q", opts.Mode)
	}
}

func generatedLines(list Masterlist, opts IndexOptions) (requires, entries []string, err error) {
	requires = make([]string, 0, len(list))
	entries = make([]string, 0, len(list))
	for i, s := range list {
		v, err := version.Parse(s)
		if err != nil {
			return nil, nil, fmt.Errorf("masterlist entry %d: %w", i, err)
		}
		requires = append(requires, fmt.Sprintf(opts.RequireFormat, v.Underscore()))
		entries = append(entries, fmt.Sprintf(opts.EntryFormat, i+1, v.String()))
	}
	return requires, entries, nil
}

type region struct {
	begin, end int
	indent     string
	lines      []string
}

func regenerateMarked(content string, requires, entries []string) (string, error) {
	lines := strings.SplitAfter(content, "\n")
	eol := lineEnding(lines)

	reqRegion, err := findRegion(lines, RequiresBegin, RequiresEnd)
	if err != nil {
		return "", err
	}
	tblRegion, err := findRegion(lines, MasterlistBegin, MasterlistEnd)
	if err != nil {
		return "", err
	}
	if reqRegion.begin < tblRegion.end && tblRegion.begin < reqRegion.end {
		return "", &MarkerError{Marker: MasterlistBegin, Problem: "region overlaps the requires region"}
	}
	reqRegion.lines = requires
	tblRegion.lines = entries

	var sb strings.Builder
	i := 0
	for i < len(lines) {
		var r *region
		switch i {
		case reqRegion.begin:
			r = &reqRegion
		case tblRegion.begin:
			r = &tblRegion
		}
		if r == nil {
			sb.WriteString(lines[i])
			i++
			continue
		}

		sb.WriteString(lines[r.begin])
		for _, l := range r.lines {
			sb.WriteString(r.indent + l + eol)
		}
		i = r.end
	}
	return sb.String(), nil
}

func findRegion(lines []string, beginMarker, endMarker string) (region, error) {
	begin, err := findMarker(lines, beginMarker)
	if err != nil {
		return region{}, err
	}
	end, err := findMarker(lines, endMarker)
	if err != nil {
		return region{}, err
	}
	if end < begin {
		return region{}, &MarkerError{Marker: endMarker, Problem: "appears before " + beginMarker}
	}

	body := strings.TrimRight(lines[begin], "\r\n")
	indent := body[:len(body)-len(strings.TrimLeft(body, " \t"))]
	return region{begin: begin, end: end, indent: indent}, nil
}

func findMarker(lines []string, marker string) (int, error) {
	found := -1
	for i, l := range lines {
		if strings.TrimSpace(l) != marker {
			continue
		}
		if found >= 0 {
			return 0, &MarkerError{Marker: marker, Problem: "appears more than once"}
		}
		found = i
	}
	if found < 0 {
		return 0, &MarkerError{Marker: marker, Problem: "not found"}
	}
	return found, nil
}

func regenerateLegacy(content string, requires, entries []string) (string, error) {
	lines := strings.SplitAfter(content, "\n")
	eol := lineEnding(lines)

	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		body := strings.TrimRight(l, "\r\n")
		if strings.Contains(body, "require") || legacyEntryLine.MatchString(body) {
			continue
		}
		kept = append(kept, l)
	}

	anchor := -1
	for i, l := range kept {
		if strings.Contains(l, legacyTableAnchor) {
			anchor = i
			break
		}
	}
	if anchor < 0 {
		return "", &MarkerError{Marker: legacyTableAnchor, Problem: "not found"}
	}

	var sb strings.Builder
	for _, r := range requires {
		sb.WriteString(r + eol)
	}
	for i, l := range kept {
		sb.WriteString(l)
		if i == anchor {
			if !strings.HasSuffix(l, "\n") {
				sb.WriteString(eol)
			}
			for _, e := range entries {
				sb.WriteString(legacyEntryIndent + e + eol)
			}
		}
	}
	return sb.String(), nil
}

// lineEnding returns "\r\n" when the file's first line uses it, "\n" otherwise.
func lineEnding(lines []string) string {
	if len(lines) > 0 && strings.HasSuffix(lines[0], "\r\n") {
		return "\r\n"
	}
	return "\n"
}
