package cli

import (
	"github.com/spf13/cobra"
)

var devmodeCmd = &cobra.Command{
	Use:   "devmode",
	Short: "Toggle the mod's dev-mode flag line",
	Long: `Comment or uncomment the dev-mode flag line (devmode.flag) in
paths.devmode_file. Turning it off prefixes the line with devmode.comment_prefix.`,
}

func newDevmodeCmd(state string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:     state + " <mod>",
		Short:   "Turn dev mode " + state,
		Example: "  modkit devmode " + state + " factoryplanner",
		Args:    modArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMod(cmd, args[0], func(s *session) (string, error) {
				_, err := s.runner.SetDevMode(enabled)
				return "", err
			})
		},
	}
}

func init() {
	devmodeCmd.GroupID = GroupBookkeeping
	rootCmd.AddCommand(devmodeCmd)
	devmodeCmd.AddCommand(newDevmodeCmd("on", true), newDevmodeCmd("off", false))
}
