// Package cli implements the modkit command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/ariel-frischer/modkit/internal/config"
	clierrors "github.com/ariel-frischer/modkit/internal/errors"
	"github.com/ariel-frischer/modkit/internal/git"
	"github.com/ariel-frischer/modkit/internal/logging"
	"github.com/ariel-frischer/modkit/internal/workflow"
	"github.com/spf13/cobra"
)

// Command group IDs for help output.
const (
	GroupRelease       = "release"
	GroupBookkeeping   = "bookkeeping"
	GroupGame          = "game"
	GroupConfiguration = "configuration"
)

var (
	cfgFile      string
	workspaceDir string
	assumeYes    bool
	verbosity    int
	debug        bool
)

// Replaced in tests so commands never touch the real XDG directories.
var (
	setupLogger    = logging.SetupLogger
	stateDir       = config.StateDir
	userConfigPath = ""
)

var rootCmd = &cobra.Command{
	Use:   "modkit",
	Short: "Release and version bookkeeping for Factorio mods",
	Long: `modkit keeps a Factorio mod's version, changelog, migrations and
mods-folder link in step, and builds releases from them.

A release bumps info.json, relinks the mod into the mods folder, turns dev
mode off, stamps the changelog, zips the mod and commits and pushes the
result. Each step is also available on its own.`,
	Example: `  # Build a release of factoryplanner
  modkit release factoryplanner

  # Start the next development cycle
  modkit changelog new factoryplanner

  # Add a migration for the upcoming version
  modkit migration new factoryplanner

  # Move to a new game version
  modkit game update factoryplanner --archive ~/Downloads/Factorio_1.1.110.zip`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := verbosity
		if debug && level < 2 {
			level = 2
		}
		setupLogger(level)
		if debug {
			git.SetDebugLogger(logging.DebugPrintf("git"))
		}
	},
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupRelease, Title: "Release:"},
		&cobra.Group{ID: GroupBookkeeping, Title: "Bookkeeping:"},
		&cobra.Group{ID: GroupGame, Title: "Game:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration:"},
	)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "Project config file (default: <workspace>/.modkit.yml)")
	pf.StringVarP(&workspaceDir, "workspace", "w", "", "Workspace directory holding the mod project and userdata/")
	pf.BoolVarP(&assumeYes, "yes", "y", false, "Skip confirmation prompts")
	pf.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")
	pf.BoolVar(&debug, "debug", false, "Debug logging, including git operations")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return clierrors.Usage(err.Error(), cmd.UseLine())
	})
}

// Execute runs the command tree and returns the process exit code.
// An interrupt cancels the running command's context.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	err = toCLIError(err)
	stderr := rootCmd.ErrOrStderr()
	var exitErr *ExitError
	switch {
	case errors.As(err, &exitErr):
	case errors.Is(err, workflow.ErrAborted):
		fmt.Fprintln(stderr, "Aborted.")
	case clierrors.IsCLIError(err):
		clierrors.FprintError(stderr, clierrors.AsCLIError(err))
	default:
		fmt.Fprint(stderr, clierrors.FormatSimpleError(err, clierrors.Runtime))
	}
	return ExitCode(err)
}
