package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/ariel-frischer/modkit/internal/changelog"
	"github.com/ariel-frischer/modkit/internal/config"
	"github.com/ariel-frischer/modkit/internal/devmode"
	clierrors "github.com/ariel-frischer/modkit/internal/errors"
	"github.com/ariel-frischer/modkit/internal/git"
	"github.com/ariel-frischer/modkit/internal/linker"
	"github.com/ariel-frischer/modkit/internal/migration"
	"github.com/ariel-frischer/modkit/internal/version"
	"github.com/ariel-frischer/modkit/internal/workflow"
	gogit "github.com/go-git/go-git/v5"
)

// Exit codes for the modkit CLI
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitFailure indicates an unclassified failure
	ExitFailure = 1

	// ExitStepFailed indicates a multi-step command stopped partway
	ExitStepFailed = 2

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3

	// ExitMissingPrerequisites indicates a missing mod file, repository or install
	ExitMissingPrerequisites = 4

	// ExitConfigError indicates invalid configuration
	ExitConfigError = 5

	// ExitAborted indicates the user declined a confirmation
	ExitAborted = 6
)

// ExitError carries an exit code through cobra's error return.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// NewExitError returns an error that makes Execute exit with code.
func NewExitError(code int) error {
	return &ExitError{Code: code}
}

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, workflow.ErrAborted) {
		return ExitAborted
	}
	var stepErr *workflow.StepError
	if errors.As(err, &stepErr) && len(stepErr.Completed) > 0 {
		return ExitStepFailed
	}
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		switch cliErr.Category {
		case clierrors.Argument:
			return ExitInvalidArguments
		case clierrors.Configuration:
			return ExitConfigError
		case clierrors.Prerequisite:
			return ExitMissingPrerequisites
		}
	}
	return ExitFailure
}

// toCLIError attaches remediation to the domain errors commands return.
// Errors that are already CLIErrors or carry only an exit code pass through.
func toCLIError(err error) error {
	if err == nil || clierrors.IsCLIError(err) {
		return err
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) || errors.Is(err, workflow.ErrAborted) {
		return err
	}

	var stepErr *workflow.StepError
	if errors.As(err, &stepErr) {
		if len(stepErr.Completed) == 0 {
			return classify(err)
		}
		cause := classify(stepErr.Err)
		cliErr := clierrors.StepFailed(stepErr.Step, stepErr.Completed, stepErr.Err)
		if c, ok := cause.(*clierrors.CLIError); ok {
			cliErr.Remediation = append(c.Remediation, cliErr.Remediation...)
		}
		cliErr.Err = err
		return cliErr
	}
	return classify(err)
}

func classify(err error) error {
	var (
		dupErr     *migration.DuplicateVersionError
		markerErr  *migration.MarkerError
		parseErr   *version.ParseError
		lineErr    *changelog.MissingLineError
		configErr  *config.ValidationError
		installErr *workflow.InstallError
	)
	switch {
	case errors.As(err, &dupErr):
		c := clierrors.DuplicateMigration(dupErr.Version)
		c.Err = err
		return c
	case errors.As(err, &markerErr):
		return clierrors.MigratorMarkers(err)
	case errors.As(err, &parseErr):
		return clierrors.InvalidVersion(err)
	case errors.As(err, &lineErr):
		return clierrors.ChangelogLineMissing(err)
	case changelog.IsParseError(err):
		return clierrors.ChangelogMalformed(err)
	case errors.As(err, &configErr):
		return clierrors.ConfigInvalid(err)
	case errors.As(err, &installErr):
		c := clierrors.GameInstallNotFound(installErr.Parent, installErr.Prefix, installErr.Matches)
		c.Err = err
		return c
	case errors.Is(err, git.ErrNoAuthor):
		c := clierrors.GitNoAuthor()
		c.Err = err
		return c
	case errors.Is(err, gogit.ErrRepositoryNotExists):
		return clierrors.GitNotRepository(err)
	case errors.Is(err, linker.ErrNotLink):
		return clierrors.NotALink(err)
	case errors.Is(err, devmode.ErrFlagNotFound):
		return clierrors.DevModeFlagMissing(err)
	case errors.Is(err, os.ErrNotExist):
		return clierrors.ModFileNotFound(err)
	}
	return err
}
