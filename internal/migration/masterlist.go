// Package migration keeps the mod's migration bookkeeping consistent: the
// masterlist.json that orders migrations, the versioned migration_X_Y_Z.lua
// files, and the generated regions of migrator.lua that load them.
package migration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ariel-frischer/modkit/internal/fileutil"
	"github.com/ariel-frischer/modkit/internal/version"
)

// DuplicateVersionError is returned when appending a version that the
// master list already contains.
type DuplicateVersionError struct {
	Version string
}

func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("version %s is already in the migration master list", e.Version)
}

// Masterlist is the ordered list of versions that have a migration.
// Order defines execution order.
type Masterlist []string

// LoadMasterlist reads a JSON array of version strings.
func LoadMasterlist(path string) (Masterlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading masterlist: %w", err)
	}

	var list Masterlist
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing masterlist %s: %w", path, err)
	}
	for i, v := range list {
		if _, err := version.Parse(v); err != nil {
			return nil, fmt.Errorf("masterlist entry %d: %w", i, err)
		}
	}
	return list, nil
}

// Save writes the list as a 4-space indented JSON array.
func (m Masterlist) Save(path string) error {
	list := m
	if list == nil {
		list = Masterlist{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	if err := enc.Encode(list); err != nil {
		return fmt.Errorf("encoding masterlist: %w", err)
	}
	data := bytes.TrimRight(buf.Bytes(), "\n")

	if err := fileutil.WriteAtomic(path, data); err != nil {
		return fmt.Errorf("writing masterlist: %w", err)
	}
	return nil
}

// Contains reports whether v is listed.
func (m Masterlist) Contains(v string) bool {
	for _, e := range m {
		if e == v {
			return true
		}
	}
	return false
}

// AppendMigration appends newVersion to the master list at path and returns
// the updated list. Prior entries keep their order.
func AppendMigration(path string, newVersion version.Version) (Masterlist, error) {
	list, err := LoadMasterlist(path)
	if err != nil {
		return nil, err
	}

	v := newVersion.String()
	if list.Contains(v) {
		return nil, &DuplicateVersionError{Version: v}
	}

	list = append(list, v)
	if err := list.Save(path); err != nil {
		return nil, err
	}
	return list, nil
}
