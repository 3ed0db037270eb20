package config

// DefaultGameSettings is written to config/config.ini of a fresh game install.
const DefaultGameSettings = `; version=5
[other]
autosave-interval=0
check-updates=false
[sound]
music-volume=0.000000
[interface]
show-tips-and-tricks=false
[graphics]
cache-sprite-atlas=true
graphics-quality=normal
show-clouds=false`

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# modkit configuration
# Project file: .modkit.yml in the workspace. User file: $XDG_CONFIG_HOME/modkit/config.yml

workspace_dir: .                      # Directory holding the mod project and userdata/
skip_confirmations: false             # Skip confirmation prompts (also --yes, MODKIT_YES)
max_history_entries: 500              # Max command history entries to retain

# Layout. Relative paths resolve against the directory in the comment; {mod} is the mod name
paths:
  project_dir: "{mod}"                # workspace
  modfiles_dir: modfiles              # project
  manifest: info.json                 # modfiles
  changelog: changelog.txt            # modfiles
  migrations_dir: data/migrations     # modfiles
  masterlist: masterlist.json         # migrations
  migration_template: migration_0_0_0.lua # migrations
  migrator: data/handlers/migrator.lua    # modfiles
  mods_dir: userdata/mods             # workspace
  releases_dir: releases              # project
  license: LICENSE.md                 # project
  workspace_file: ""                  # workspace; e.g. factoryplanner.code-workspace
  devmode_file: data/init.lua         # modfiles

changelog:
  placeholder_version: 0.00.00        # Version line of a blank entry (older scripts used 0.17.00)
  placeholder_date: 00. 00. 0000
  sections: [Features, Changes, Bugfixes]
  enable_devmode: true                # 'changelog new' re-enables dev mode

migrations:
  migrator_mode: markers              # markers | legacy
  require_format: require("data.migrations.migration_%s")
  entry_format: '[%d] = {version="%s"},'

devmode:
  flag: devmode = true                # Line toggled by 'devmode on|off'
  comment_prefix: "--"

git:
  remote: origin
  commit_message: Release %s
  author_name: ""                     # Fallback when git config has no user.name
  author_email: ""
  push_timeout: 0s                    # e.g. 2m; 0s waits until interrupted

release:
  commit: true
  push: true
  include_license: true               # Add LICENSE.md to the zip root

game:
  parent_dir: ""                      # Directory holding Factorio_* installs (default: workspace)
  install_dir: ""                     # Current install (default: the unique Factorio_* directory)
  install_prefix: Factorio_
  exe_link: Factorio
  exe_path: bin/x64/factorio.exe
  log_link: current-log
  log_file: factorio-current.log
  carry_over: [mods/mod-list.json]    # Files copied into the new install
  carry_over_zips: [mods, saves]      # Directories whose *.zip files are copied
  copy_workers: 4
  remove_archive: true
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"workspace_dir":       ".",
		"skip_confirmations":  false,
		"max_history_entries": 500,

		"paths.project_dir":        "{mod}",
		"paths.modfiles_dir":       "modfiles",
		"paths.manifest":           "info.json",
		"paths.changelog":          "changelog.txt",
		"paths.migrations_dir":     "data/migrations",
		"paths.masterlist":         "masterlist.json",
		"paths.migration_template": "migration_0_0_0.lua",
		"paths.migrator":           "data/handlers/migrator.lua",
		"paths.mods_dir":           "userdata/mods",
		"paths.releases_dir":       "releases",
		"paths.license":            "LICENSE.md",
		"paths.workspace_file":     "",
		"paths.devmode_file":       "data/init.lua",

		"changelog.placeholder_version": "0.00.00",
		"changelog.placeholder_date":    "00. 00. 0000",
		"changelog.sections":            []string{"Features", "Changes", "Bugfixes"},
		"changelog.enable_devmode":      true,

		"migrations.migrator_mode":  "markers",
		"migrations.require_format": `require("data.migrations.migration_%s")`,
		"migrations.entry_format":   `[%d] = {version="%s"},`,

		"devmode.flag":           "devmode = true",
		"devmode.comment_prefix": "--",

		"git.remote":         "origin",
		"git.commit_message": "Release %s",
		"git.author_name":    "",
		"git.author_email":   "",
		"git.push_timeout":   "0s",

		"release.commit":          true,
		"release.push":            true,
		"release.include_license": true,

		"game.parent_dir":      "",
		"game.install_dir":     "",
		"game.install_prefix":  "Factorio_",
		"game.exe_link":        "Factorio",
		"game.exe_path":        "bin/x64/factorio.exe",
		"game.log_link":        "current-log",
		"game.log_file":        "factorio-current.log",
		"game.settings":        DefaultGameSettings,
		"game.carry_over":      []string{"mods/mod-list.json"},
		"game.carry_over_zips": []string{"mods", "saves"},
		"game.copy_workers":    4,
		"game.remove_archive":  true,
	}
}
