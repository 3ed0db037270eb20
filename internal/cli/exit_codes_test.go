// Package cli tests exit codes and the mapping of domain errors to CLIErrors.
// Related: internal/cli/exit_codes.go
// Tags: cli, exit-codes, errors

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/ariel-frischer/modkit/internal/changelog"
	clierrors "github.com/ariel-frischer/modkit/internal/errors"
	"github.com/ariel-frischer/modkit/internal/git"
	"github.com/ariel-frischer/modkit/internal/linker"
	"github.com/ariel-frischer/modkit/internal/migration"
	"github.com/ariel-frischer/modkit/internal/version"
	"github.com/ariel-frischer/modkit/internal/workflow"
	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		code int
		want string
	}{
		"success":       {code: ExitSuccess, want: "exit code 0"},
		"invalid args":  {code: ExitInvalidArguments, want: "exit code 3"},
		"aborted":       {code: ExitAborted, want: "exit code 6"},
		"config error":  {code: ExitConfigError, want: "exit code 5"},
		"missing input": {code: ExitMissingPrerequisites, want: "exit code 4"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := NewExitError(tt.code)
			assert.EqualError(t, err, tt.want)
			assert.Equal(t, tt.code, ExitCode(fmt.Errorf("wrapped: %w", err)))
		})
	}
}

func TestToCLIError_ExitCodes(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  error
		want int
	}{
		"nil": {
			err:  nil,
			want: ExitSuccess,
		},
		"aborted": {
			err:  workflow.ErrAborted,
			want: ExitAborted,
		},
		"missing manifest": {
			err:  fmt.Errorf("reading manifest: %w", fs.ErrNotExist),
			want: ExitMissingPrerequisites,
		},
		"bad version": {
			err:  &version.ParseError{Input: "1.x", Reason: "not a number"},
			want: ExitMissingPrerequisites,
		},
		"duplicate migration": {
			err:  &migration.DuplicateVersionError{Version: "0.17.22"},
			want: ExitMissingPrerequisites,
		},
		"migrator markers": {
			err:  &migration.MarkerError{Marker: "-- modkit:requires:begin", Problem: "not found"},
			want: ExitConfigError,
		},
		"changelog line": {
			err:  &changelog.MissingLineError{Kind: "Date"},
			want: ExitMissingPrerequisites,
		},
		"malformed changelog": {
			err:  fmt.Errorf("loading changelog: %w", &changelog.ParseError{Line: 4, Message: "second Version line in entry"}),
			want: ExitMissingPrerequisites,
		},
		"no author": {
			err:  fmt.Errorf("commit: %w", git.ErrNoAuthor),
			want: ExitConfigError,
		},
		"not a repository": {
			err:  fmt.Errorf("opening repository: %w", gogit.ErrRepositoryNotExists),
			want: ExitMissingPrerequisites,
		},
		"not a link": {
			err:  fmt.Errorf("mods/fp_1.0.0: %w", linker.ErrNotLink),
			want: ExitMissingPrerequisites,
		},
		"install ambiguous": {
			err:  &workflow.InstallError{Parent: "/games", Prefix: "Factorio_", Matches: []string{"Factorio_1", "Factorio_2"}},
			want: ExitConfigError,
		},
		"first step failed": {
			err:  &workflow.StepError{Step: workflow.StepBump, Err: fs.ErrNotExist},
			want: ExitMissingPrerequisites,
		},
		"later step failed": {
			err:  &workflow.StepError{Step: workflow.StepPush, Completed: []string{workflow.StepBump, workflow.StepCommit}, Err: errors.New("rejected")},
			want: ExitStepFailed,
		},
		"unknown": {
			err:  errors.New("boom"),
			want: ExitFailure,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExitCode(toCLIError(tt.err)))
		})
	}
}

func TestToCLIError_StepRemediation(t *testing.T) {
	t.Parallel()

	err := toCLIError(&workflow.StepError{
		Step:      workflow.StepCommit,
		Completed: []string{workflow.StepBump, workflow.StepZip},
		Err:       git.ErrNoAuthor,
	})

	cliErr := clierrors.AsCLIError(err)
	require.NotNil(t, cliErr)
	assert.Contains(t, cliErr.Message, `step "commit" failed`)
	assert.Contains(t, cliErr.Remediation, "Completed: bump version, build zip")
	assert.Contains(t, cliErr.Remediation, "Or set git.author_name and git.author_email in .modkit.yml")
	assert.True(t, errors.Is(err, git.ErrNoAuthor))
}
