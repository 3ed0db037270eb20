package cli

import (
	"fmt"
	"strings"

	"github.com/ariel-frischer/modkit/internal/config"
	clierrors "github.com/ariel-frischer/modkit/internal/errors"
	"github.com/ariel-frischer/modkit/internal/history"
	"github.com/ariel-frischer/modkit/internal/layout"
	"github.com/ariel-frischer/modkit/internal/lifecycle"
	"github.com/ariel-frischer/modkit/internal/prompt"
	"github.com/ariel-frischer/modkit/internal/workflow"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// session holds the configuration and runner for one mod command.
type session struct {
	cmd    *cobra.Command
	cfg    *config.Loaded
	layout *layout.Layout
	runner *workflow.Runner
}

// loadConfig loads the layered configuration with the global flags applied.
func loadConfig(cmd *cobra.Command) (*config.Loaded, error) {
	loaded, err := config.LoadWithOptions(config.LoadOptions{
		WorkspaceDir:      workspaceDir,
		ProjectConfigPath: cfgFile,
		UserConfigPath:    userConfigPath,
		WarningWriter:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, clierrors.ConfigInvalid(err)
	}
	if assumeYes {
		loaded.SkipConfirmations = true
		loaded.Sources["skip_confirmations"] = config.SourceFlag
	}
	return loaded, nil
}

func newSession(cmd *cobra.Command, mod string) (*session, error) {
	loaded, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	lay, err := layout.Resolve(loaded.WorkspaceDir, mod, loaded.Paths)
	if err != nil {
		return nil, clierrors.Usage(err.Error(), cmd.UseLine())
	}

	runner := workflow.New(loaded.Configuration, lay, workflow.Options{
		Prompter: prompt.NewWithIO(cmd.InOrStdin(), cmd.OutOrStdout(), isTerminal(cmd)),
		Out:      cmd.OutOrStdout(),
	})
	return &session{cmd: cmd, cfg: loaded, layout: lay, runner: runner}, nil
}

// isTerminal reports whether the command reads from an interactive terminal.
func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// runMod is the RunE body shared by the mutating mod commands. fn returns
// the version the command produced, which goes into the history log.
func runMod(cmd *cobra.Command, mod string, fn func(s *session) (string, error)) error {
	s, err := newSession(cmd, mod)
	if err != nil {
		return err
	}
	return lifecycle.Run(s, commandName(cmd), func() (string, error) {
		ver, err := fn(s)
		return ver, toCLIError(err)
	})
}

// OnCommandComplete appends the command to the history log.
func (s *session) OnCommandComplete(name string, res lifecycle.Result) {
	w := history.NewWriter(stateDir(), s.cfg.MaxHistoryEntries)
	w.Warn = s.cmd.ErrOrStderr()
	w.LogCommand(name, s.layout.Mod, res.Version, ExitCode(res.Err), res.Duration)
}

// commandName returns the command path without the binary name, e.g.
// "changelog new".
func commandName(cmd *cobra.Command) string {
	return strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" ")
}

// modArgs validates "<mod> [extra...]" positional arguments.
func modArgs(maxExtra int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return clierrors.MissingModName(cmd.UseLine())
		}
		if len(args) > 1+maxExtra {
			return clierrors.Usage(
				fmt.Sprintf("unexpected arguments: %s", strings.Join(args[1+maxExtra:], " ")),
				cmd.UseLine(),
			)
		}
		return nil
	}
}
