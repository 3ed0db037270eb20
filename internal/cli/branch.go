package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var branchCmd = &cobra.Command{
	Use:   "branch <mod> [branch]",
	Short: "Check out a branch and relink to its version",
	Long: `Check out a branch of the mod's repository, then relink the mods folder
and the workspace file to the version found in its info.json.

Without a branch argument the local and remote branches are listed for an
interactive choice.`,
	Example: `  modkit branch factoryplanner
  modkit branch factoryplanner feature/matrix-solver`,
	Args: modArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var branch string
		if len(args) == 2 {
			branch = args[1]
		}
		return runMod(cmd, args[0], func(s *session) (string, error) {
			res, err := s.runner.Branch(branch)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "On %s at %s\n", res.Branch, res.Version)
			return res.Version.String(), nil
		})
	},
}

func init() {
	branchCmd.GroupID = GroupBookkeeping
	rootCmd.AddCommand(branchCmd)
}
