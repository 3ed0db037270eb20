package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var bumpCmd = &cobra.Command{
	Use:   "bump <mod>",
	Short: "Increment the last component of the mod version",
	Long: `Increment the last component of the version in info.json and print the
new version. Leading zeros are not kept: 0.17.09 becomes 0.17.10.`,
	Example: "  modkit bump factoryplanner",
	Args:    modArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMod(cmd, args[0], func(s *session) (string, error) {
			_, next, err := s.runner.Bump()
			if err != nil {
				return "", err
			}
			fmt.Fprintln(cmd.OutOrStdout(), next)
			return next.String(), nil
		})
	},
}

func init() {
	bumpCmd.GroupID = GroupRelease
	rootCmd.AddCommand(bumpCmd)
}
