package cli

import (
	"fmt"

	"github.com/ariel-frischer/modkit/internal/output"
	"github.com/spf13/cobra"
)

var migrationCmd = &cobra.Command{
	Use:   "migration",
	Short: "Create migrations and regenerate the migrator index",
}

var migrationNewCmd = &cobra.Command{
	Use:   "new <mod>",
	Short: "Create a migration for the next version",
	Long: `Create migration_X_Y_Z.lua for the version after the one in info.json,
append that version to the master list and regenerate the migrator's
require lines and index table. info.json is not changed.`,
	Example: "  modkit migration new factoryplanner",
	Args:    modArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMod(cmd, args[0], func(s *session) (string, error) {
			res, err := s.runner.MigrationNew()
			if err != nil {
				return "", err
			}
			return res.Version.String(), nil
		})
	},
}

var migrationRegenCmd = &cobra.Command{
	Use:   "regen <mod>",
	Short: "Regenerate the migrator index from the master list",
	Long: `Rewrite the migrator's require lines and index table from the master
list, then report master-list versions without a migration file and
migration files missing from the master list.`,
	Example: "  modkit migration regen factoryplanner",
	Args:    modArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMod(cmd, args[0], func(s *session) (string, error) {
			c, err := s.runner.MigrationRegen()
			if err != nil {
				return "", err
			}
			out := cmd.OutOrStdout()
			if c.OK() {
				fmt.Fprintln(out, "Master list and migration files agree.")
				return "", nil
			}
			if len(c.MissingFiles) > 0 {
				output.PrintWarning(out, fmt.Sprintf("%d master-list versions have no migration file", len(c.MissingFiles)))
				output.PrintList(out, "Missing files:", c.MissingFiles)
			}
			if len(c.Unlisted) > 0 {
				output.PrintWarning(out, fmt.Sprintf("%d migration files are not in the master list", len(c.Unlisted)))
				output.PrintList(out, "Unlisted versions:", c.Unlisted)
			}
			return "", nil
		})
	},
}

func init() {
	migrationCmd.GroupID = GroupBookkeeping
	rootCmd.AddCommand(migrationCmd)
	migrationCmd.AddCommand(migrationNewCmd, migrationRegenCmd)
}
