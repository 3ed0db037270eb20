package errors

import (
	"fmt"
	"strings"
)

// Common error messages for the modkit CLI.
// These templates keep remediation wording consistent across commands.

// MissingModName creates an error for a command run without a mod argument.
func MissingModName(usage string) *CLIError {
	return Usage(
		"mod name is required",
		usage,
		"Pass the mod's directory name, e.g. factoryplanner",
	)
}

// ModFileNotFound creates an error for a missing manifest, changelog or other mod file.
func ModFileNotFound(err error) *CLIError {
	return Wrap(err, Prerequisite,
		"Run modkit from the workspace or pass --workspace",
		"Check the paths section with: modkit config show",
	)
}

// InvalidVersion creates an error for an unparseable version.
func InvalidVersion(err error) *CLIError {
	return Wrap(err, Prerequisite,
		"Versions are dot-separated integers, e.g. 1.2.3",
	)
}

// ChangelogLineMissing creates an error when the changelog has no entry to finalize.
func ChangelogLineMissing(err error) *CLIError {
	return Wrap(err, Prerequisite,
		"Start a new entry with: modkit changelog new <mod>",
	)
}

// ChangelogMalformed creates an error for a changelog the parser rejects.
func ChangelogMalformed(err error) *CLIError {
	return Wrap(err, Prerequisite,
		"Fix the changelog at the reported line",
		"Entries start with a dash separator, then Version: and Date: lines",
	)
}

// MigratorMarkers creates an error for a migrator file whose generated regions can't be found.
func MigratorMarkers(err error) *CLIError {
	return Wrap(err, Configuration,
		"Add '-- modkit:requires:begin/end' and '-- modkit:masterlist:begin/end' marker lines",
		"Or set migrations.migrator_mode: legacy in .modkit.yml",
	)
}

// DuplicateMigration creates an error when the master list already holds a version.
func DuplicateMigration(version string) *CLIError {
	return New(Prerequisite,
		fmt.Sprintf("migration %s is already in the master list", version),
		"Bump the version first with: modkit bump <mod>",
		"Or regenerate the index with: modkit migration regen <mod>",
	)
}

// ConfigInvalid creates an error for a config file that fails to load or validate.
func ConfigInvalid(err error) *CLIError {
	return WrapMessage(err, Configuration,
		"invalid configuration",
		"Check .modkit.yml and $XDG_CONFIG_HOME/modkit/config.yml",
		"Show effective values with: modkit config show",
	)
}

// GitNotRepository creates an error when the project isn't inside a git repository.
func GitNotRepository(err error) *CLIError {
	return Wrap(err, Prerequisite,
		"Initialize with: git init",
		"Or point paths.project_dir at the repository",
	)
}

// GitNoAuthor creates an error when no commit author is configured anywhere.
func GitNoAuthor() *CLIError {
	return New(Configuration,
		"no commit author configured",
		"Run: git config --global user.name \"Name\" && git config --global user.email you@example.com",
		"Or set git.author_name and git.author_email in .modkit.yml",
	)
}

// NotALink creates an error when a mods-folder entry is a real file or directory.
func NotALink(err error) *CLIError {
	return Wrap(err, Prerequisite,
		"Move the directory out of the mods folder",
	)
}

// DevModeFlagMissing creates an error when the dev-mode flag line can't be found.
func DevModeFlagMissing(err error) *CLIError {
	return Wrap(err, Configuration,
		"Check devmode.flag and paths.devmode_file in .modkit.yml",
	)
}

// GameInstallNotFound creates an error when the current game install can't be determined.
func GameInstallNotFound(parent, prefix string, matches []string) *CLIError {
	msg := fmt.Sprintf("no %s* install found in %s", prefix, parent)
	if len(matches) > 1 {
		msg = fmt.Sprintf("several %s* installs found in %s: %s", prefix, parent, strings.Join(matches, ", "))
	}
	return New(Configuration, msg,
		"Set game.install_dir in .modkit.yml",
	)
}

// StepFailed creates an error for a multi-step command that stopped part way.
func StepFailed(failed string, completed []string, err error) *CLIError {
	remediation := []string{"Fix the cause and finish the remaining steps by hand; completed steps are not rolled back"}
	if len(completed) > 0 {
		remediation = append(remediation, "Completed: "+strings.Join(completed, ", "))
	}
	return WrapMessage(err, Runtime, fmt.Sprintf("step %q failed", failed), remediation...)
}
