// Package layout resolves every file modkit touches from configuration and
// the mod name, without globbing.
package layout

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ariel-frischer/modkit/internal/config"
	"github.com/ariel-frischer/modkit/internal/version"
)

// Layout holds absolute paths for one mod.
type Layout struct {
	Mod string

	Workspace         string
	ProjectDir        string
	ModfilesDir       string
	Manifest          string
	Changelog         string
	MigrationsDir     string
	Masterlist        string
	MigrationTemplate string
	Migrator          string
	ModsDir           string
	ReleasesDir       string
	License           string
	WorkspaceFile     string // empty when not configured
	DevModeFile       string
}

// Resolve builds the layout for mod from the workspace directory and path
// configuration.
func Resolve(workspace, mod string, p config.PathsConfig) (*Layout, error) {
	if mod == "" {
		return nil, fmt.Errorf("mod name is required")
	}
	if strings.ContainsAny(mod, `/\`) {
		return nil, fmt.Errorf("mod name %q must not contain path separators", mod)
	}

	ws, err := filepath.Abs(workspace)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace %s: %w", workspace, err)
	}

	r := resolver{mod: mod}
	l := &Layout{Mod: mod, Workspace: ws}
	l.ProjectDir = r.join(ws, p.ProjectDir, "{mod}")
	l.ModfilesDir = r.join(l.ProjectDir, p.ModfilesDir, "modfiles")
	l.Manifest = r.join(l.ModfilesDir, p.Manifest, "info.json")
	l.Changelog = r.join(l.ModfilesDir, p.Changelog, "changelog.txt")
	l.MigrationsDir = r.join(l.ModfilesDir, p.MigrationsDir, "data/migrations")
	l.Masterlist = r.join(l.MigrationsDir, p.Masterlist, "masterlist.json")
	l.MigrationTemplate = r.join(l.MigrationsDir, p.MigrationTemplate, "migration_0_0_0.lua")
	l.Migrator = r.join(l.ModfilesDir, p.Migrator, "data/handlers/migrator.lua")
	l.ModsDir = r.join(ws, p.ModsDir, "userdata/mods")
	l.ReleasesDir = r.join(l.ProjectDir, p.ReleasesDir, "releases")
	l.License = r.join(l.ProjectDir, p.License, "LICENSE.md")
	l.DevModeFile = r.join(l.ModfilesDir, p.DevModeFile, "data/init.lua")
	if p.WorkspaceFile != "" {
		l.WorkspaceFile = r.join(ws, p.WorkspaceFile, "")
	}
	return l, nil
}

type resolver struct {
	mod string
}

func (r resolver) join(base, value, fallback string) string {
	if value == "" {
		value = fallback
	}
	value = filepath.FromSlash(strings.ReplaceAll(value, "{mod}", r.mod))
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(base, value)
}

// VersionedName returns "<mod>_<version>", the name of the mods-folder link
// and of the release zip root.
func (l *Layout) VersionedName(v version.Version) string {
	return l.Mod + "_" + v.String()
}

// ModLink returns the mods-folder link path for v.
func (l *Layout) ModLink(v version.Version) string {
	return filepath.Join(l.ModsDir, l.VersionedName(v))
}

// ReleaseZip returns releases/<mod>_<version>.zip.
func (l *Layout) ReleaseZip(v version.Version) string {
	return filepath.Join(l.ReleasesDir, l.VersionedName(v)+".zip")
}
