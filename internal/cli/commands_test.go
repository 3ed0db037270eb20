// Package cli tests the mod commands end to end against a temporary workspace.
// Related: internal/cli/session.go, internal/cli/release.go, internal/cli/changelog.go
// Tags: cli, commands, history, integration

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/ariel-frischer/modkit/internal/config"
	"github.com/ariel-frischer/modkit/internal/history"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests in this file drive the global command tree and run sequentially.

const cliManifest = `{
    "name": "fp",
    "version": "0.17.21",
    "title": "Factory Planner"
}
`

const cliChangelog = `---------------------------------------------------------------------------------------------------
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

const cliMigrator = `-- modkit:requires:begin
require("data.migrations.migration_0_17_21")
-- modkit:requires:end

local migration_masterlist = {
    -- modkit:masterlist:begin
    [1] = {version="0.17.21"},
    -- modkit:masterlist:end
}
`

type result struct {
	stdout string
	stderr string
	code   int
}

// cliEnv isolates the command tree from the user's configuration and state.
type cliEnv struct {
	ws    string
	state string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("mods-folder links are junctions on Windows")
	}
	t.Setenv("MODKIT_YES", "")

	env := &cliEnv{ws: t.TempDir(), state: t.TempDir()}

	oldLogger, oldState, oldUser, oldColor := setupLogger, stateDir, userConfigPath, color.NoColor
	setupLogger = func(int) {}
	stateDir = func() string { return env.state }
	userConfigPath = "-"
	color.NoColor = true
	t.Cleanup(func() {
		setupLogger, stateDir, userConfigPath, color.NoColor = oldLogger, oldState, oldUser, oldColor
	})

	modfiles := filepath.Join(env.ws, "fp", "modfiles")
	files := map[string]string{
		"fp/modfiles/info.json":                             cliManifest,
		"fp/modfiles/changelog.txt":                         cliChangelog,
		"fp/modfiles/data/init.lua":                         "devmode = true\n",
		"fp/modfiles/data/handlers/migrator.lua":            cliMigrator,
		"fp/modfiles/data/migrations/masterlist.json":       "[\n    \"0.17.21\"\n]",
		"fp/modfiles/data/migrations/migration_0_0_0.lua":   "-- 0_0_0\n",
		"fp/modfiles/data/migrations/migration_0_17_21.lua": "-- 0_17_21\n",
		"fp/LICENSE.md":                                     "MIT\n",
	}
	for rel, content := range files {
		p := filepath.Join(env.ws, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	mods := filepath.Join(env.ws, "userdata", "mods")
	require.NoError(t, os.MkdirAll(mods, 0o755))
	require.NoError(t, os.Symlink(modfiles, filepath.Join(mods, "fp_0.17.21")))
	return env
}

func (e *cliEnv) path(rel string) string {
	return filepath.Join(e.ws, filepath.FromSlash(rel))
}

func (e *cliEnv) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(e.path(rel))
	require.NoError(t, err)
	return string(data)
}

// run executes modkit with --workspace pointing at the fixture.
func (e *cliEnv) run(t *testing.T, args ...string) result {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append([]string{"--workspace", e.ws}, args...))

	code := Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

// resetFlags restores every flag in the tree to its default between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestBumpCommand(t *testing.T) {
	env := newCLIEnv(t)

	res := env.run(t, "--yes", "bump", "fp")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "0.17.22")
	assert.Contains(t, env.read(t, "fp/modfiles/info.json"), `"version": "0.17.22"`)

	h, err := history.LoadHistory(env.state)
	require.NoError(t, err)
	require.Len(t, h.Entries, 1)
	assert.Equal(t, "bump", h.Entries[0].Command)
	assert.Equal(t, "fp", h.Entries[0].Mod)
	assert.Equal(t, "0.17.22", h.Entries[0].Version)
	assert.Equal(t, ExitSuccess, h.Entries[0].ExitCode)
}

func TestReleaseCommand_NoCommit(t *testing.T) {
	env := newCLIEnv(t)

	res := env.run(t, "--yes", "release", "fp", "--no-commit")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Released fp 0.17.21 → 0.17.22")

	assert.Contains(t, env.read(t, "fp/modfiles/info.json"), `"version": "0.17.22"`)
	assert.Equal(t, "--devmode = true\n", env.read(t, "fp/modfiles/data/init.lua"))
	assert.Contains(t, env.read(t, "fp/modfiles/changelog.txt"), "Version: 0.17.22\n")
	assert.FileExists(t, env.path("fp/releases/fp_0.17.22.zip"))

	_, err := os.Lstat(env.path("userdata/mods/fp_0.17.21"))
	assert.True(t, os.IsNotExist(err), "old link should be renamed")
	target, err := os.Readlink(env.path("userdata/mods/fp_0.17.22"))
	require.NoError(t, err)
	assert.Equal(t, env.path("fp/modfiles"), target)
}

func TestReleaseCommand_NotARepository(t *testing.T) {
	env := newCLIEnv(t)

	res := env.run(t, "--yes", "release", "fp")
	assert.Equal(t, ExitMissingPrerequisites, res.code)
	assert.Contains(t, res.stderr, "git init")
	assert.Contains(t, env.read(t, "fp/modfiles/info.json"), `"version": "0.17.21"`, "nothing changes before the repository opens")
}

func TestModCommands_Errors(t *testing.T) {
	tests := map[string]struct {
		args       []string
		wantCode   int
		wantStderr string
	}{
		"missing mod name": {
			args:       []string{"bump"},
			wantCode:   ExitInvalidArguments,
			wantStderr: "mod name is required",
		},
		"too many arguments": {
			args:       []string{"link", "fp", "extra"},
			wantCode:   ExitInvalidArguments,
			wantStderr: "unexpected arguments: extra",
		},
		"unknown flag": {
			args:       []string{"bump", "fp", "--frobnicate"},
			wantCode:   ExitInvalidArguments,
			wantStderr: "frobnicate",
		},
		"unknown mod": {
			args:       []string{"--yes", "bump", "other"},
			wantCode:   ExitMissingPrerequisites,
			wantStderr: "info.json",
		},
		"declined without a terminal": {
			args:       []string{"bump", "fp"},
			wantCode:   ExitAborted,
			wantStderr: "Aborted.",
		},
		"game update without archive": {
			args:       []string{"--yes", "game", "update", "fp"},
			wantCode:   ExitInvalidArguments,
			wantStderr: "--archive is required",
		},
		"finalize with bad date": {
			args:       []string{"--yes", "changelog", "finalize", "fp", "--date", "yesterday"},
			wantCode:   ExitInvalidArguments,
			wantStderr: "invalid date",
		},
		"explicit config missing": {
			args:       []string{"--config", "/nonexistent/modkit.yml", "bump", "fp"},
			wantCode:   ExitConfigError,
			wantStderr: "not found",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			env := newCLIEnv(t)

			res := env.run(t, tt.args...)
			assert.Equal(t, tt.wantCode, res.code, res.stderr)
			assert.Contains(t, res.stderr, tt.wantStderr)
			assert.Contains(t, env.read(t, "fp/modfiles/info.json"), `"version": "0.17.21"`)
		})
	}
}

func TestChangelogCommands(t *testing.T) {
	env := newCLIEnv(t)

	res := env.run(t, "--yes", "changelog", "finalize", "fp", "--version", "1.2.3", "--date", "2024-03-01")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	content := env.read(t, "fp/modfiles/changelog.txt")
	assert.True(t, strings.Contains(content, "Version: 1.2.3\nDate: 01. 03. 2024\n"), content)

	res = env.run(t, "--yes", "devmode", "off", "fp")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	res = env.run(t, "--yes", "changelog", "new", "fp")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	content = env.read(t, "fp/modfiles/changelog.txt")
	assert.True(t, strings.HasPrefix(content, strings.Repeat("-", 99)+"\nVersion: 0.00.00\n"), content)
	assert.Equal(t, "devmode = true\n", env.read(t, "fp/modfiles/data/init.lua"))

	res = env.run(t, "changelog", "show", "fp", "--plain", "--last", "2")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "1.2.3")
	assert.Contains(t, res.stdout, "(2 of 3 entries shown. Use --last 3 to see all)")
	assert.Contains(t, res.stdout, "Unreleased: 0 of ")

	res = env.run(t, "changelog", "show", "fp", "--yaml")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "version: 0.17.21")

	res = env.run(t, "changelog", "show", "fp", "9.9.9")
	assert.Equal(t, ExitInvalidArguments, res.code)
	assert.Contains(t, res.stderr, "Available versions:")
}

func TestMigrationCommands(t *testing.T) {
	env := newCLIEnv(t)

	res := env.run(t, "--yes", "migration", "new", "fp")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "-- 0_17_22\n", env.read(t, "fp/modfiles/data/migrations/migration_0_17_22.lua"))
	assert.Contains(t, env.read(t, "fp/modfiles/data/migrations/masterlist.json"), `"0.17.22"`)
	assert.Contains(t, env.read(t, "fp/modfiles/data/handlers/migrator.lua"), `[2] = {version="0.17.22"},`)
	assert.Contains(t, env.read(t, "fp/modfiles/info.json"), `"version": "0.17.21"`, "manifest is not bumped")

	res = env.run(t, "--yes", "migration", "regen", "fp")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Master list and migration files agree.")

	require.NoError(t, os.WriteFile(env.path("fp/modfiles/data/migrations/migration_0_17_19.lua"), nil, 0o644))
	res = env.run(t, "--yes", "migration", "regen", "fp")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "1 migration files are not in the master list")
	assert.Contains(t, res.stdout, "0.17.19")
}

func TestLinkCommand(t *testing.T) {
	env := newCLIEnv(t)

	require.NoError(t, os.WriteFile(env.path("fp/modfiles/info.json"),
		[]byte(strings.Replace(cliManifest, "0.17.21", "0.18.0", 1)), 0o644))

	res := env.run(t, "--yes", "link", "fp")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	_, err := os.Readlink(env.path("userdata/mods/fp_0.18.0"))
	assert.NoError(t, err)

	require.NoError(t, os.Remove(env.path("userdata/mods/fp_0.18.0")))
	require.NoError(t, os.Mkdir(env.path("userdata/mods/fp_0.17.0"), 0o755))
	res = env.run(t, "--yes", "link", "fp")
	assert.Equal(t, ExitMissingPrerequisites, res.code)
	assert.Contains(t, res.stderr, "not a link")
}

func TestHistoryCommand(t *testing.T) {
	env := newCLIEnv(t)

	require.Equal(t, ExitSuccess, env.run(t, "--yes", "bump", "fp").code)
	require.Equal(t, ExitAborted, env.run(t, "bump", "fp").code)

	res := env.run(t, "history")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "exit=0")
	assert.Contains(t, lines[1], "exit=6")

	res = env.run(t, "history", "--mod", "other")
	assert.Contains(t, res.stdout, "No matching entries for mod 'other'.")

	res = env.run(t, "history", "--last", "-1")
	assert.Equal(t, ExitInvalidArguments, res.code)

	res = env.run(t, "history", "--clear")
	require.Equal(t, ExitSuccess, res.code)
	res = env.run(t, "history")
	assert.Contains(t, res.stdout, "No history available.")
}

func TestConfigCommands(t *testing.T) {
	env := newCLIEnv(t)

	res := env.run(t, "config", "init")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.FileExists(t, filepath.Join(env.ws, config.ProjectConfigFile))

	res = env.run(t, "config", "init")
	assert.Contains(t, res.stdout, "already exists")

	require.NoError(t, os.WriteFile(filepath.Join(env.ws, config.ProjectConfigFile), []byte("git:\n  remote: upstream\n"), 0o644))

	res = env.run(t, "config", "show")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Configuration Sources")
	assert.Contains(t, res.stdout, "git.remote: upstream  # project")
	assert.Contains(t, res.stdout, "git.commit_message: Release %s  # default")

	res = env.run(t, "--yes", "config", "show", "--json")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	var shown map[string]shownValue
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &shown))
	assert.Equal(t, "upstream", shown["git.remote"].Value)
	assert.Equal(t, config.SourceProject, shown["git.remote"].Source)
	assert.Equal(t, true, shown["skip_confirmations"].Value)
	assert.Equal(t, config.SourceFlag, shown["skip_confirmations"].Source)
}

func TestVersionCommand(t *testing.T) {
	env := newCLIEnv(t)

	res := env.run(t, "version")
	require.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.stdout, "modkit dev")
}
