// Package config provides hierarchical configuration management for modkit using koanf.
// Configuration is loaded with priority: environment variables > project config (.modkit.yml)
// > user config ($XDG_CONFIG_HOME/modkit/config.yml) > defaults. A legacy .modkit.json project
// file is still read, with a warning.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceEnv     ConfigSource = "env"
	SourceFlag    ConfigSource = "flag"
)

// Configuration represents the modkit CLI configuration
type Configuration struct {
	WorkspaceDir      string `koanf:"workspace_dir"`
	SkipConfirmations bool   `koanf:"skip_confirmations"` // Also set by MODKIT_YES or --yes
	MaxHistoryEntries int    `koanf:"max_history_entries" validate:"min=0"`

	Paths      PathsConfig      `koanf:"paths"`
	Changelog  ChangelogConfig  `koanf:"changelog"`
	Migrations MigrationsConfig `koanf:"migrations"`
	DevMode    DevModeConfig    `koanf:"devmode"`
	Git        GitConfig        `koanf:"git"`
	Release    ReleaseConfig    `koanf:"release"`
	Game       GameConfig       `koanf:"game"`
}

// PathsConfig holds the project layout. Relative values resolve against the
// directory each key documents; "{mod}" is replaced by the mod name.
type PathsConfig struct {
	ProjectDir        string `koanf:"project_dir"`        // workspace
	ModfilesDir       string `koanf:"modfiles_dir"`       // project
	Manifest          string `koanf:"manifest"`           // modfiles
	Changelog         string `koanf:"changelog"`          // modfiles
	MigrationsDir     string `koanf:"migrations_dir"`     // modfiles
	Masterlist        string `koanf:"masterlist"`         // migrations
	MigrationTemplate string `koanf:"migration_template"` // migrations
	Migrator          string `koanf:"migrator"`           // modfiles
	ModsDir           string `koanf:"mods_dir"`           // workspace
	ReleasesDir       string `koanf:"releases_dir"`       // project
	License           string `koanf:"license"`            // project
	WorkspaceFile     string `koanf:"workspace_file"`     // workspace, optional
	DevModeFile       string `koanf:"devmode_file"`       // modfiles
}

// ChangelogConfig controls the blank entry template.
type ChangelogConfig struct {
	PlaceholderVersion string   `koanf:"placeholder_version" validate:"required"`
	PlaceholderDate    string   `koanf:"placeholder_date" validate:"required"`
	Sections           []string `koanf:"sections" validate:"min=1,dive,required"`
	EnableDevMode      bool     `koanf:"enable_devmode"`
}

// MigrationsConfig controls migrator.lua regeneration.
type MigrationsConfig struct {
	MigratorMode  string `koanf:"migrator_mode" validate:"oneof=markers legacy"`
	RequireFormat string `koanf:"require_format" validate:"required"`
	EntryFormat   string `koanf:"entry_format" validate:"required"`
}

// DevModeConfig selects the flag line toggled by devmode on/off.
type DevModeConfig struct {
	Flag          string `koanf:"flag" validate:"required"`
	CommentPrefix string `koanf:"comment_prefix" validate:"required"`
}

// GitConfig configures commits and pushes.
type GitConfig struct {
	Remote        string        `koanf:"remote" validate:"required"`
	CommitMessage string        `koanf:"commit_message" validate:"required"` // %s is the new version
	AuthorName    string        `koanf:"author_name"`
	AuthorEmail   string        `koanf:"author_email" validate:"omitempty,email"`
	PushTimeout   time.Duration `koanf:"push_timeout" validate:"min=0"` // 0 waits until interrupted
}

// ReleaseConfig toggles the optional release steps.
type ReleaseConfig struct {
	Commit         bool `koanf:"commit"`
	Push           bool `koanf:"push"`
	IncludeLicense bool `koanf:"include_license"`
}

// GameConfig describes the local game installation for game update.
type GameConfig struct {
	ParentDir     string   `koanf:"parent_dir"`  // workspace
	InstallDir    string   `koanf:"install_dir"` // parent; empty means the unique Factorio_* directory
	InstallPrefix string   `koanf:"install_prefix" validate:"required"`
	ExeLink       string   `koanf:"exe_link" validate:"required"`
	ExePath       string   `koanf:"exe_path" validate:"required"`
	LogLink       string   `koanf:"log_link" validate:"required"`
	LogFile       string   `koanf:"log_file" validate:"required"`
	Settings      string   `koanf:"settings"`
	CarryOver     []string `koanf:"carry_over"`
	CarryOverZips []string `koanf:"carry_over_zips"`
	CopyWorkers   int      `koanf:"copy_workers" validate:"min=1,max=32"`
	RemoveArchive bool     `koanf:"remove_archive"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// WorkspaceDir comes from --workspace. It overrides workspace_dir and is
	// where the project config is looked up (default: current directory).
	WorkspaceDir string
	// ProjectConfigPath overrides the project config path (default: <workspace>/.modkit.yml)
	ProjectConfigPath string
	// UserConfigPath overrides the user config path; "-" disables it.
	UserConfigPath string
	// WarningWriter receives deprecation warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipWarnings suppresses deprecation warnings
	SkipWarnings bool
}

// Loaded is a configuration together with the source of every key.
type Loaded struct {
	*Configuration
	Sources map[string]ConfigSource
	k       *koanf.Koanf
}

// Keys returns every configuration key in sorted order.
func (l *Loaded) Keys() []string {
	keys := l.k.Keys()
	sort.Strings(keys)
	return keys
}

// Value returns the raw value of key.
func (l *Loaded) Value(key string) any {
	return l.k.Get(key)
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Loaded, error) {
	k := koanf.New(".")
	sources := make(map[string]ConfigSource)
	warningWriter := getWarningWriter(opts.WarningWriter)

	defaults := koanf.New(".")
	for key, value := range GetDefaults() {
		if err := defaults.Set(key, value); err != nil {
			return nil, fmt.Errorf("setting default %s: %w", key, err)
		}
	}
	merge(k, defaults, SourceDefault, sources)

	user, err := loadUserConfig(opts.UserConfigPath)
	if err != nil {
		return nil, err
	}
	merge(k, user, SourceUser, sources)

	project, err := loadProjectConfig(opts, warningWriter)
	if err != nil {
		return nil, err
	}
	merge(k, project, SourceProject, sources)

	envLayer, err := loadEnvironmentConfig()
	if err != nil {
		return nil, err
	}
	merge(k, envLayer, SourceEnv, sources)

	cfg, err := finalizeConfig(k)
	if err != nil {
		return nil, err
	}
	if os.Getenv("MODKIT_YES") != "" {
		_ = k.Set("skip_confirmations", true)
		sources["skip_confirmations"] = SourceEnv
	}
	if opts.WorkspaceDir != "" {
		cfg.WorkspaceDir = opts.WorkspaceDir
		_ = k.Set("workspace_dir", opts.WorkspaceDir)
		sources["workspace_dir"] = SourceFlag
	}

	return &Loaded{Configuration: cfg, Sources: sources, k: k}, nil
}

func merge(dst, layer *koanf.Koanf, src ConfigSource, sources map[string]ConfigSource) {
	if layer == nil {
		return
	}
	for _, key := range layer.Keys() {
		sources[key] = src
	}
	// Merge only fails for type conflicts between maps and scalars, which
	// finalizeConfig reports on unmarshal.
	_ = dst.Merge(layer)
}

// getWarningWriter returns the warning writer or defaults to stderr
func getWarningWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

func loadUserConfig(override string) (*koanf.Koanf, error) {
	if override == "-" {
		return nil, nil
	}
	path := override
	if path == "" {
		path = UserConfigPath()
	}
	if !fileExists(path) {
		return nil, nil
	}

	k := koanf.New(".")
	if err := loadYAMLConfig(k, path, "user"); err != nil {
		return nil, fmt.Errorf("loading user YAML config: %w", err)
	}
	return k, nil
}

// loadProjectConfig loads .modkit.yml, falling back to a legacy .modkit.json
// with a warning. When both exist the JSON file is ignored.
func loadProjectConfig(opts LoadOptions, warningWriter io.Writer) (*koanf.Koanf, error) {
	yamlPath := opts.ProjectConfigPath
	if yamlPath == "" {
		yamlPath = ProjectConfigPath(opts.WorkspaceDir)
	}
	legacyPath := LegacyProjectConfigPath(opts.WorkspaceDir)

	yamlExists := fileExists(yamlPath)
	legacyExists := fileExists(legacyPath)

	k := koanf.New(".")
	switch {
	case yamlExists:
		if err := loadYAMLConfig(k, yamlPath, "project"); err != nil {
			return nil, fmt.Errorf("loading project YAML config: %w", err)
		}
		if legacyExists && !opts.SkipWarnings {
			fmt.Fprintf(warningWriter, "Warning: Legacy JSON config found at %s (ignored, using %s)\n\n", legacyPath, yamlPath)
		}
	case opts.ProjectConfigPath != "":
		return nil, fmt.Errorf("config file %s not found", yamlPath)
	case legacyExists:
		if err := k.Load(file.Provider(legacyPath), json.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load legacy project config %s: %w", legacyPath, err)
		}
		if !opts.SkipWarnings {
			fmt.Fprintf(warningWriter, "Warning: Using deprecated JSON config at %s\n", legacyPath)
			fmt.Fprintf(warningWriter, "  Convert it to %s to silence this warning.\n\n", ProjectConfigFile)
		}
	default:
		return nil, nil
	}
	return k, nil
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path, configType string) error {
	if err := CheckSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

func loadEnvironmentConfig() (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("MODKIT_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}
	// MODKIT_YES is a switch, not a key.
	k.Delete("yes")
	return k, nil
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := CheckValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.WorkspaceDir = expandHomePath(cfg.WorkspaceDir)
	cfg.Game.ParentDir = expandHomePath(cfg.Game.ParentDir)

	if os.Getenv("MODKIT_YES") != "" {
		cfg.SkipConfirmations = true
	}

	return &cfg, nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys.
// A double underscore separates nesting levels:
// MODKIT_GIT__REMOTE -> git.remote, MODKIT_MAX_HISTORY_ENTRIES -> max_history_entries
func envTransform(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "MODKIT_")), "__", ".")
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
