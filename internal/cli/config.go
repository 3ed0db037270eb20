package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ariel-frischer/modkit/internal/config"
	clierrors "github.com/ariel-frischer/modkit/internal/errors"
	"github.com/ariel-frischer/modkit/internal/fileutil"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and create modkit configuration",
	Long: `Show and create modkit configuration.

Configuration is loaded with the following priority (highest to lowest):
  1. Flags (--workspace, --yes)
  2. Environment variables (MODKIT_*, MODKIT_GIT__REMOTE for git.remote)
  3. Project config (<workspace>/.modkit.yml)
  4. User config ($XDG_CONFIG_HOME/modkit/config.yml)
  5. Built-in defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration and where each value comes from",
	Example: `  modkit config show
  modkit config show --json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented config file",
	Long: `Write a fully commented configuration file. By default the project
file <workspace>/.modkit.yml is created; --user writes the user file instead.
An existing file is left unchanged unless --force is given.`,
	Example: `  modkit config init
  modkit config init --user
  modkit config init --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configCmd.GroupID = GroupConfiguration
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd)

	configShowCmd.Flags().Bool("json", false, "Output in JSON format")
	configInitCmd.Flags().Bool("user", false, "Create the user-level config")
	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config")
}

type shownValue struct {
	Value  any                 `json:"value"`
	Source config.ConfigSource `json:"source"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	loaded, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if asJSON {
		values := make(map[string]shownValue, len(loaded.Keys()))
		for _, key := range loaded.Keys() {
			values[key] = shownValue{Value: loaded.Value(key), Source: loaded.Sources[key]}
		}
		values["skip_confirmations"] = shownValue{Value: loaded.SkipConfirmations, Source: sourceOf(loaded, "skip_confirmations")}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(values)
	}

	dim := color.New(color.Faint).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(out, "%s\n\n", cyan("Configuration Sources"))
	fmt.Fprintf(out, "  user:    %s\n", userConfigLabel())
	fmt.Fprintf(out, "  project: %s\n\n", projectConfigLabel(loaded))

	for _, key := range loaded.Keys() {
		value := loaded.Value(key)
		if key == "skip_confirmations" {
			value = loaded.SkipConfirmations
		}
		fmt.Fprintf(out, "%s: %s  %s\n", key, formatValue(value), dim("# "+string(sourceOf(loaded, key))))
	}
	return nil
}

func sourceOf(l *config.Loaded, key string) config.ConfigSource {
	if src, ok := l.Sources[key]; ok {
		return src
	}
	return config.SourceDefault
}

// formatValue renders a value as a single YAML line.
func formatValue(v any) string {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	s := strings.TrimRight(string(data), "\n")
	if strings.Contains(s, "\n") {
		flow, err := json.Marshal(v)
		if err == nil {
			return string(flow)
		}
	}
	return s
}

func userConfigLabel() string {
	path := userConfigPath
	if path == "" {
		path = config.UserConfigPath()
	}
	if path == "-" {
		return "(disabled)"
	}
	if !fileutil.Exists(path) {
		return path + " (not found)"
	}
	return path
}

func projectConfigLabel(l *config.Loaded) string {
	path := cfgFile
	if path == "" {
		path = config.ProjectConfigPath(l.WorkspaceDir)
	}
	if !fileutil.Exists(path) {
		return path + " (not found)"
	}
	return path
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetBool("user")
	force, _ := cmd.Flags().GetBool("force")

	var path string
	switch {
	case user && userConfigPath != "" && userConfigPath != "-":
		path = userConfigPath
	case user:
		path = config.UserConfigPath()
	case cfgFile != "":
		path = cfgFile
	default:
		ws := workspaceDir
		if ws == "" {
			ws = "."
		}
		path = config.ProjectConfigPath(ws)
	}

	out := cmd.OutOrStdout()
	if fileutil.Exists(path) && !force {
		fmt.Fprintf(out, "Config already exists at %s (use --force to overwrite)\n", path)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return clierrors.WrapMessage(err, clierrors.Runtime, "creating config directory")
	}
	if err := fileutil.WriteAtomic(path, []byte(config.GetDefaultConfigTemplate())); err != nil {
		return clierrors.WrapMessage(err, clierrors.Runtime, "writing config")
	}
	fmt.Fprintf(out, "Created %s\n", path)
	return nil
}
