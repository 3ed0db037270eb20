// Package workflow tests the release, bookkeeping and game-update commands
// against a real mod tree with fake collaborators.
// Related: internal/workflow/release.go, internal/workflow/bookkeeping.go, internal/workflow/game.go
// Tags: workflow, release, fakes
package workflow

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ariel-frischer/modkit/internal/config"
	"github.com/ariel-frischer/modkit/internal/layout"
	"github.com/stretchr/testify/require"
)

var releaseDay = time.Date(2020, time.February, 3, 12, 0, 0, 0, time.UTC)

const testManifest = `{
    "name": "fp",
    "version": "0.17.21",
    "title": "Factory Planner"
}
`

const testChangelog = `---------------------------------------------------------------------------------------------------
Version: 0.00.00
Date: 00. 00. 0000
  Features:
    - Added the thing
---------------------------------------------------------------------------------------------------
Version: 0.17.21
Date: 01. 01. 2020
  Bugfixes:
    - Fixed the other thing
`

const testMigrator = `-- modkit:requires:begin
require("data.migrations.migration_0_17_20")
require("data.migrations.migration_0_17_21")
-- modkit:requires:end

local migration_masterlist = {
    -- modkit:masterlist:begin
    [1] = {version="0.17.20"},
    [2] = {version="0.17.21"},
    -- modkit:masterlist:end
}
`

// fixture is a workspace holding one mod, "fp", at version 0.17.21.
type fixture struct {
	ws       string
	cfg      *config.Configuration
	layout   *layout.Layout
	linker   *fakeLinker
	archiver *fakeArchiver
	prompter *fakePrompter
	repo     *fakeRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ws := t.TempDir()
	mod := filepath.Join(ws, "fp")
	modfiles := filepath.Join(mod, "modfiles")
	files := map[string]string{
		"modfiles/info.json":                             testManifest,
		"modfiles/changelog.txt":                         testChangelog,
		"modfiles/data/init.lua":                         "devmode = true\nlocal x = 1\n",
		"modfiles/data/handlers/migrator.lua":            testMigrator,
		"modfiles/data/migrations/masterlist.json":       "[\n    \"0.17.20\",\n    \"0.17.21\"\n]",
		"modfiles/data/migrations/migration_0_0_0.lua":   "return function() -- 0_0_0\nend\n",
		"modfiles/data/migrations/migration_0_17_20.lua": "return function() end\n",
		"modfiles/data/migrations/migration_0_17_21.lua": "return function() end\n",
		"LICENSE.md":                                     "MIT\n",
	}
	for rel, content := range files {
		p := filepath.Join(mod, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	mods := filepath.Join(ws, "userdata", "mods")
	require.NoError(t, os.MkdirAll(mods, 0o755))
	lk := newFakeLinker()
	require.NoError(t, lk.add(filepath.Join(mods, "fp_0.17.21"), modfiles))

	cfg := &config.Configuration{
		WorkspaceDir:      ws,
		SkipConfirmations: true,
		Changelog: config.ChangelogConfig{
			PlaceholderVersion: "0.00.00",
			PlaceholderDate:    "00. 00. 0000",
			Sections:           []string{"Features", "Changes", "Bugfixes"},
			EnableDevMode:      true,
		},
		Migrations: config.MigrationsConfig{MigratorMode: "markers"},
		DevMode:    config.DevModeConfig{Flag: "devmode = true", CommentPrefix: "--"},
		Git:        config.GitConfig{Remote: "origin", CommitMessage: "Release %s"},
		Release:    config.ReleaseConfig{Commit: true, Push: true, IncludeLicense: true},
		Game: config.GameConfig{
			InstallPrefix: "Factorio_",
			ExeLink:       "Factorio",
			ExePath:       "bin/x64/factorio.exe",
			LogLink:       "current-log",
			LogFile:       "factorio-current.log",
			Settings:      config.DefaultGameSettings,
			CarryOver:     []string{"mods/mod-list.json"},
			CarryOverZips: []string{"mods", "saves"},
			CopyWorkers:   2,
			RemoveArchive: true,
		},
	}

	lay, err := layout.Resolve(ws, "fp", cfg.Paths)
	require.NoError(t, err)

	return &fixture{
		ws:       ws,
		cfg:      cfg,
		layout:   lay,
		linker:   lk,
		archiver: &fakeArchiver{},
		prompter: &fakePrompter{answer: true},
		repo:     &fakeRepo{current: "master"},
	}
}

func (f *fixture) runner() *Runner {
	return New(f.cfg, f.layout, Options{
		Linker:   f.linker,
		Archiver: f.archiver,
		Prompter: f.prompter,
		OpenRepo: func(string) (Repository, error) { return f.repo, nil },
		Now:      func() time.Time { return releaseDay },
	})
}

func (f *fixture) read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func (f *fixture) write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
