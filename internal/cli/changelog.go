package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/ariel-frischer/modkit/internal/changelog"
	clierrors "github.com/ariel-frischer/modkit/internal/errors"
	"github.com/ariel-frischer/modkit/internal/layout"
	"github.com/ariel-frischer/modkit/internal/version"
	"github.com/spf13/cobra"
)

var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Start, finalize and view changelog entries",
}

var changelogNewCmd = &cobra.Command{
	Use:   "new <mod>",
	Short: "Prepend a blank entry for the next version",
	Long: `Prepend a blank changelog entry with placeholder version and date lines
and empty sections, then turn dev mode back on when changelog.enable_devmode
is set.`,
	Example: "  modkit changelog new factoryplanner",
	Args:    modArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMod(cmd, args[0], func(s *session) (string, error) {
			return "", s.runner.ChangelogNew()
		})
	},
}

var changelogFinalizeCmd = &cobra.Command{
	Use:   "finalize <mod>",
	Short: "Stamp the first entry with a version and date",
	Long: `Replace the Version and Date lines of the first changelog entry.
The version defaults to the one in info.json and the date to today.
Dates are written as DD. MM. YYYY.`,
	Example: `  modkit changelog finalize factoryplanner
  modkit changelog finalize factoryplanner --version 1.1.5 --date 2024-03-01`,
	Args: modArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		verFlag, _ := cmd.Flags().GetString("version")
		dateFlag, _ := cmd.Flags().GetString("date")

		var v version.Version
		if verFlag != "" {
			parsed, err := version.Parse(verFlag)
			if err != nil {
				return clierrors.Usage(err.Error(), cmd.UseLine())
			}
			v = parsed
		}
		date, err := parseDate(dateFlag)
		if err != nil {
			return clierrors.Usage(err.Error(), cmd.UseLine(),
				"Use YYYY-MM-DD or DD. MM. YYYY")
		}

		return runMod(cmd, args[0], func(s *session) (string, error) {
			v, err := s.runner.ChangelogFinalize(v, date)
			if err != nil {
				return "", err
			}
			return v.String(), nil
		})
	},
}

var changelogShowCmd = &cobra.Command{
	Use:   "show <mod> [version]",
	Short: "Display changelog entries",
	Long: `Parse the mod's changelog and display its entries.

By default the 5 most recent entries are shown. Pass a version to show only
that entry, or --yaml to export the whole changelog.`,
	Example: `  modkit changelog show factoryplanner
  modkit changelog show factoryplanner 1.1.4
  modkit changelog show factoryplanner --last 10 --plain
  modkit changelog show factoryplanner --yaml`,
	Args: modArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChangelogShow(cmd, args)
	},
}

func init() {
	changelogCmd.GroupID = GroupBookkeeping
	rootCmd.AddCommand(changelogCmd)
	changelogCmd.AddCommand(changelogNewCmd, changelogFinalizeCmd, changelogShowCmd)

	changelogFinalizeCmd.Flags().String("version", "", "Version to write (default: info.json version)")
	changelogFinalizeCmd.Flags().String("date", "", "Release date (default: today)")

	changelogShowCmd.Flags().Int("last", 5, "Number of entries to show")
	changelogShowCmd.Flags().Bool("plain", false, "Plain text output (no colors/icons)")
	changelogShowCmd.Flags().Bool("yaml", false, "Export the changelog as YAML")
}

// parseDate accepts ISO dates and the changelog's own layout.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.DateOnly, changelog.DateLayout} {
		if d, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func runChangelogShow(cmd *cobra.Command, args []string) error {
	last, _ := cmd.Flags().GetInt("last")
	plain, _ := cmd.Flags().GetBool("plain")
	asYAML, _ := cmd.Flags().GetBool("yaml")
	if last < 1 {
		return clierrors.Usage(fmt.Sprintf("--last must be positive, got %d", last), cmd.UseLine())
	}

	loaded, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lay, err := layout.Resolve(loaded.WorkspaceDir, args[0], loaded.Paths)
	if err != nil {
		return clierrors.Usage(err.Error(), cmd.UseLine())
	}
	log, err := changelog.Load(lay.Changelog)
	if err != nil {
		return toCLIError(err)
	}

	out := cmd.OutOrStdout()
	if asYAML {
		return changelog.ExportYAML(log, out)
	}

	opts := changelog.FormatOptions{Plain: plain}
	if len(args) == 2 {
		entry, err := log.GetVersion(args[1])
		if err != nil {
			var notFound *changelog.VersionNotFoundError
			if errors.As(err, &notFound) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Version %q not found.\n\n", args[1])
				fmt.Fprintf(cmd.ErrOrStderr(), "Available versions:\n")
				for _, ver := range log.ListVersions() {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", ver)
				}
				return NewExitError(ExitInvalidArguments)
			}
			return err
		}
		return changelog.FormatEntry(entry, out, opts)
	}

	entries := log.GetLastN(last)
	if len(entries) == 0 {
		fmt.Fprintln(out, "No changelog entries found.")
		return nil
	}
	if err := changelog.FormatTerminal(entries, out, opts); err != nil {
		return fmt.Errorf("formatting entries: %w", err)
	}
	if total := log.GetEntryCount(); total > len(entries) {
		fmt.Fprintf(out, "\n(%d of %d entries shown. Use --last %d to see all)\n", len(entries), total, total)
	}
	if latest := log.Latest(); latest != nil && latest.IsPlaceholder() {
		fmt.Fprintf(out, "\nUnreleased: %d of %d items are waiting for the next release.\n", latest.Count(), log.GetItemCount())
	}
	return nil
}
