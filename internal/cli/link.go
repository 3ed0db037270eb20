package cli

import (
	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link <mod>",
	Short: "Link the mod into the mods folder under its current version",
	Long: `Make the mods folder hold exactly one <mod>_<version> link, for the
version in info.json. A link for another version is renamed; extra links
are removed. A real directory in the way is an error.`,
	Example: "  modkit link factoryplanner",
	Args:    modArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMod(cmd, args[0], func(s *session) (string, error) {
			if _, err := s.runner.Link(); err != nil {
				return "", err
			}
			return "", nil
		})
	},
}

func init() {
	linkCmd.GroupID = GroupBookkeeping
	rootCmd.AddCommand(linkCmd)
}
