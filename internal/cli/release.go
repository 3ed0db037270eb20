package cli

import (
	"fmt"

	"github.com/ariel-frischer/modkit/internal/output"
	"github.com/ariel-frischer/modkit/internal/workflow"
	"github.com/spf13/cobra"
)

var releaseCmd = &cobra.Command{
	Use:   "release <mod>",
	Short: "Bump, finalize, zip, commit and push a release",
	Long: `Build a release of a mod.

The steps run in order and the first failure stops the run:
  1. bump the version in info.json
  2. relink the mod into the mods folder as <mod>_<version>
  3. turn dev mode off
  4. stamp the changelog's first entry with the version and today's date
  5. zip the mod to releases/<mod>_<version>.zip, adding the license
  6. update the workspace file, when one is configured
  7. commit and push

Completed steps are not rolled back.`,
	Example: `  modkit release factoryplanner
  modkit release factoryplanner --no-push
  modkit release factoryplanner --no-commit --yes`,
	Args: modArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		noCommit, _ := cmd.Flags().GetBool("no-commit")
		noPush, _ := cmd.Flags().GetBool("no-push")

		return runMod(cmd, args[0], func(s *session) (string, error) {
			out := cmd.OutOrStdout()
			output.PrintCommandHeader(out, "release", s.layout.Mod)

			res, err := s.runner.Release(cmd.Context(), workflow.ReleaseOptions{
				NoCommit: noCommit,
				NoPush:   noPush,
			})
			if res == nil || res.Version.IsZero() {
				return "", err
			}
			if err != nil {
				return res.Version.String(), err
			}
			fmt.Fprintf(out, "\n%s\n", output.Rule(min(output.GetTerminalWidth(), 60)))
			fmt.Fprintf(out, "Released %s %s → %s\n", s.layout.Mod, res.Previous, res.Version)
			return res.Version.String(), nil
		})
	},
}

func init() {
	releaseCmd.GroupID = GroupRelease
	releaseCmd.Flags().Bool("no-commit", false, "Skip the commit and push steps")
	releaseCmd.Flags().Bool("no-push", false, "Commit but don't push")
	rootCmd.AddCommand(releaseCmd)
}
