package migration

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/ariel-frischer/modkit/internal/fileutil"
	"github.com/ariel-frischer/modkit/internal/version"
)

// templateToken is the version placeholder inside the blank migration file.
const templateToken = "0_0_0"

var migrationFile = regexp.MustCompile(`^migration_(\d+(?:_\d+)*)\.lua$`)

// FileName returns the migration filename for v, e.g. "migration_0_17_22.lua".
func FileName(v version.Version) string {
	return fmt.Sprintf("migration_%s.lua", v.Underscore())
}

// CreateFromTemplate copies the blank migration template into dir as the
// migration for v, replacing every "0_0_0" with v's underscore form.
// It refuses to overwrite an existing migration.
func CreateFromTemplate(templatePath, dir string, v version.Version) (string, error) {
	tmpl, err := os.ReadFile(templatePath)
	if err != nil {
		return "", fmt.Errorf("reading migration template: %w", err)
	}

	target := filepath.Join(dir, FileName(v))
	if fileutil.Exists(target) {
		return "", fmt.Errorf("migration %s already exists", target)
	}

	content := bytes.ReplaceAll(tmpl, []byte(templateToken), []byte(v.Underscore()))
	if err := fileutil.WriteAtomic(target, content); err != nil {
		return "", fmt.Errorf("writing migration: %w", err)
	}
	return target, nil
}

// Consistency describes how the master list and the migration files on
// disk differ. Both slices are empty when they are in bijection.
type Consistency struct {
	// MissingFiles lists master-list versions with no migration file.
	MissingFiles []string
	// Unlisted lists migration files whose version is not in the master list.
	Unlisted []string
}

// OK reports whether list and files are in bijection.
func (c Consistency) OK() bool {
	return len(c.MissingFiles) == 0 && len(c.Unlisted) == 0
}

// CheckConsistency compares the master list against the migration files in
// dir. The blank template (version 0.0.0) is ignored.
func CheckConsistency(list Masterlist, dir string) (Consistency, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Consistency{}, fmt.Errorf("reading migrations directory: %w", err)
	}

	onDisk := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := migrationFile.FindStringSubmatch(e.Name())
		if m == nil || m[1] == templateToken {
			continue
		}
		v, err := version.ParseUnderscore(m[1])
		if err != nil {
			continue
		}
		onDisk[v.String()] = true
	}

	var c Consistency
	listed := make(map[string]bool, len(list))
	for _, s := range list {
		listed[s] = true
		if !onDisk[s] {
			c.MissingFiles = append(c.MissingFiles, s)
		}
	}
	for s := range onDisk {
		if !listed[s] {
			c.Unlisted = append(c.Unlisted, s)
		}
	}
	sort.Strings(c.Unlisted)
	return c, nil
}
