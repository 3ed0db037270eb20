package changelog

import (
	"fmt"
	"strings"
)

// VersionNotFoundError is returned when a requested version doesn't exist.
type VersionNotFoundError struct {
	Version           string
	AvailableVersions []string
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("version %q not found (available: %s)",
		e.Version, strings.Join(e.AvailableVersions, ", "))
}

// GetVersion retrieves a specific entry from the changelog.
// Accepts both "v0.17.22" and "0.17.22".
func (c *Changelog) GetVersion(version string) (*Entry, error) {
	normalized := strings.TrimPrefix(strings.ToLower(version), "v")

	for i := range c.Entries {
		if c.Entries[i].Version == normalized {
			return &c.Entries[i], nil
		}
	}

	return nil, &VersionNotFoundError{
		Version:           version,
		AvailableVersions: c.ListVersions(),
	}
}

// Latest returns the topmost entry, or nil for an empty changelog.
func (c *Changelog) Latest() *Entry {
	if len(c.Entries) == 0 {
		return nil
	}
	return &c.Entries[0]
}

// ListVersions returns all version identifiers, newest first.
func (c *Changelog) ListVersions() []string {
	versions := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		versions[i] = e.Version
	}
	return versions
}

// GetLastN returns the N most recent entries.
func (c *Changelog) GetLastN(n int) []Entry {
	if n <= 0 {
		return []Entry{}
	}
	if len(c.Entries) <= n {
		return c.Entries
	}
	return c.Entries[:n]
}

// GetEntryCount returns the number of entries (versions) in the changelog.
func (c *Changelog) GetEntryCount() int {
	return len(c.Entries)
}

// GetItemCount returns the total number of bullet items across all entries.
func (c *Changelog) GetItemCount() int {
	count := 0
	for _, e := range c.Entries {
		count += e.Count()
	}
	return count
}
