package cli

import (
	"fmt"
	"path/filepath"

	clierrors "github.com/ariel-frischer/modkit/internal/errors"
	"github.com/ariel-frischer/modkit/internal/output"
	"github.com/spf13/cobra"
)

var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Manage the local game install",
}

var gameUpdateCmd = &cobra.Command{
	Use:   "update <mod> --archive <Factorio_X.zip>",
	Short: "Replace the game install with a downloaded archive",
	Long: `Replace the current Factorio install with the one in a downloaded zip:
  1. extract the archive next to the current install
  2. write config/config.ini from game.settings
  3. relink the executable and log links
  4. create mods/ holding a link to the mod
  5. copy game.carry_over files and the zips in game.carry_over_zips
  6. remove the old install and, with game.remove_archive, the archive

The current install is game.install_dir, or the single game.install_prefix
directory in game.parent_dir.`,
	Example: "  modkit game update factoryplanner --archive ~/Downloads/Factorio_1.1.110.zip",
	Args:    modArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, _ := cmd.Flags().GetString("archive")
		if archive == "" {
			return clierrors.Usage("--archive is required", cmd.UseLine())
		}
		abs, err := filepath.Abs(archive)
		if err != nil {
			return clierrors.New(clierrors.Argument, err.Error())
		}

		return runMod(cmd, args[0], func(s *session) (string, error) {
			out := cmd.OutOrStdout()
			output.PrintCommandHeader(out, "game update", filepath.Base(abs))

			res, err := s.runner.GameUpdate(cmd.Context(), abs)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(out, "\nGame updated: %s → %s\n", filepath.Base(res.Previous), filepath.Base(res.Install))
			return "", nil
		})
	},
}

func init() {
	gameCmd.GroupID = GroupGame
	rootCmd.AddCommand(gameCmd)
	gameCmd.AddCommand(gameUpdateCmd)
	gameUpdateCmd.Flags().StringP("archive", "a", "", "Path to the downloaded game zip")
}
