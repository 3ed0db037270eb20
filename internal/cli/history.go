package cli

import (
	"fmt"

	clierrors "github.com/ariel-frischer/modkit/internal/errors"
	"github.com/ariel-frischer/modkit/internal/history"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View command execution history",
	Long: `View a log of modkit command executions with timestamp, command name,
mod, resulting version, exit code, and duration.`,
	Example: `  modkit history
  modkit history --mod factoryplanner --last 10
  modkit history --clear`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistoryWithStateDir(cmd, stateDir())
	},
}

func init() {
	historyCmd.GroupID = GroupConfiguration
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringP("mod", "m", "", "Filter by mod name")
	historyCmd.Flags().IntP("last", "n", 0, "Limit to last N entries (most recent)")
	historyCmd.Flags().Bool("clear", false, "Clear all history")
}

// runHistoryWithStateDir runs the history command against stateDir.
func runHistoryWithStateDir(cmd *cobra.Command, stateDir string) error {
	clearFlag, _ := cmd.Flags().GetBool("clear")
	mod, _ := cmd.Flags().GetString("mod")
	limit, _ := cmd.Flags().GetInt("last")
	out := cmd.OutOrStdout()

	if limit < 0 {
		return clierrors.Usage(fmt.Sprintf("--last must not be negative, got %d", limit), cmd.UseLine())
	}

	if clearFlag {
		if err := history.ClearHistory(stateDir); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Fprintln(out, "History cleared.")
		return nil
	}

	h, err := history.LoadHistory(stateDir)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	entries := history.Filter(h.Entries, mod, limit)
	if len(entries) == 0 {
		if mod != "" {
			fmt.Fprintf(out, "No matching entries for mod '%s'.\n", mod)
		} else {
			fmt.Fprintln(out, "No history available.")
		}
		return nil
	}

	displayEntries(cmd, entries)
	return nil
}

func displayEntries(cmd *cobra.Command, entries []history.HistoryEntry) {
	out := cmd.OutOrStdout()

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	for _, entry := range entries {
		exitCode := fmt.Sprintf("%d", entry.ExitCode)
		if entry.ExitCode == 0 {
			exitCode = green(exitCode)
		} else {
			exitCode = red(exitCode)
		}

		ver := entry.Version
		if ver == "" {
			ver = "-"
		}

		fmt.Fprintf(out, "%s  %-17s  %-15s  %-10s  exit=%s  %s\n",
			cyan(entry.Timestamp.Format("2006-01-02 15:04:05")),
			entry.Command,
			entry.Mod,
			ver,
			exitCode,
			entry.Duration,
		)
	}
}
