package changelog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var (
	separatorLine = regexp.MustCompile(`^-{3,}\s*$`)
	versionLine   = regexp.MustCompile(`^Version:`)
	dateLine      = regexp.MustCompile(`^Date:`)
	sectionLine   = regexp.MustCompile(`^ {2}(\S[^:]*):\s*$`)
	itemLine      = regexp.MustCompile(`^ {4}-(?: (.*))?$`)
	continuation  = regexp.MustCompile(`^ {6,}(\S.*)$`)
)

// ParseError reports a line that does not fit the changelog format.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("changelog line %d: %s", e.Line, e.Message)
}

// Load reads and parses the changelog at path.
func Load(path string) (*Changelog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening changelog file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a changelog in the Factorio format:
//
//	---------------------------------------------------------------------------------------------------
//	Version: 0.17.22
//	Date: 01. 02. 2020
//	  Features:
//	    - First line of an item
//	      continued here
//
// Blank bullets ("    - ") left over from the entry template are dropped.
func Parse(r io.Reader) (*Changelog, error) {
	var (
		log     Changelog
		entry   *Entry
		section *Section
		lineNo  int
	)

	flush := func() {
		if entry != nil {
			log.Entries = append(log.Entries, *entry)
		}
		entry, section = nil, nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		switch {
		case strings.TrimSpace(line) == "":
			continue
		case separatorLine.MatchString(line):
			flush()
			entry = &Entry{}
		case versionLine.MatchString(line):
			if entry == nil {
				entry = &Entry{}
			} else if entry.Version != "" {
				return nil, &ParseError{Line: lineNo, Message: "second Version line in entry (missing separator?)"}
			}
			entry.Version = fieldValue(line)
		case dateLine.MatchString(line):
			if entry == nil {
				return nil, &ParseError{Line: lineNo, Message: "Date line outside of an entry"}
			}
			entry.Date = fieldValue(line)
		case sectionLine.MatchString(line):
			if entry == nil {
				return nil, &ParseError{Line: lineNo, Message: "category outside of an entry"}
			}
			name := sectionLine.FindStringSubmatch(line)[1]
			entry.Sections = append(entry.Sections, Section{Name: name})
			section = &entry.Sections[len(entry.Sections)-1]
		case itemLine.MatchString(line):
			if section == nil {
				return nil, &ParseError{Line: lineNo, Message: "bullet outside of a category"}
			}
			text := strings.TrimSpace(itemLine.FindStringSubmatch(line)[1])
			if text != "" {
				section.Items = append(section.Items, text)
			}
		case continuation.MatchString(line):
			if section == nil || len(section.Items) == 0 {
				return nil, &ParseError{Line: lineNo, Message: "continuation line without a bullet"}
			}
			last := len(section.Items) - 1
			section.Items[last] += " " + continuation.FindStringSubmatch(line)[1]
		default:
			return nil, &ParseError{Line: lineNo, Message: fmt.Sprintf("unrecognized line %q", line)}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading changelog: %w", err)
	}
	flush()

	return &log, nil
}

func fieldValue(line string) string {
	_, value, _ := strings.Cut(line, ":")
	return strings.TrimSpace(value)
}

// IsParseError returns true if the error is a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
