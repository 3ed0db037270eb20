package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ariel-frischer/modkit/internal/changelog"
	"github.com/ariel-frischer/modkit/internal/devmode"
	"github.com/ariel-frischer/modkit/internal/manifest"
	"github.com/ariel-frischer/modkit/internal/migration"
	"github.com/ariel-frischer/modkit/internal/version"
)

// Bump increments the manifest version and returns the old and new values.
func (r *Runner) Bump() (version.Version, version.Version, error) {
	current, err := manifest.ReadVersion(r.Layout.Manifest)
	if err != nil {
		return version.Version{}, version.Version{}, err
	}
	if err := r.confirm(fmt.Sprintf("Bump %s from %s to %s?", r.Layout.Mod, current, current.Bump())); err != nil {
		return version.Version{}, version.Version{}, err
	}

	next, err := manifest.BumpVersion(r.Layout.Manifest)
	if err != nil {
		return version.Version{}, version.Version{}, err
	}
	r.progress.Success(fmt.Sprintf("%s version bumped to %s", filepath.Base(r.Layout.Manifest), next))
	return current, next, nil
}

// ChangelogNew prepends a blank entry and, when configured, re-enables dev
// mode for the next development cycle.
func (r *Runner) ChangelogNew() error {
	if err := r.confirm(fmt.Sprintf("Start a new changelog entry for %s?", r.Layout.Mod)); err != nil {
		return err
	}

	var s steps
	err := s.run("prepend changelog entry", func() error {
		if err := changelog.Prepend(r.Layout.Changelog, r.changelogTemplate()); err != nil {
			return err
		}
		r.progress.Success("blank entry added to " + filepath.Base(r.Layout.Changelog))
		return nil
	})
	if err == nil && r.Config.Changelog.EnableDevMode {
		err = s.run("enable dev mode", func() error {
			changed, err := devmode.Set(r.Layout.DevModeFile, true, r.devModeOptions())
			if changed {
				r.progress.Success("dev mode enabled")
			}
			return err
		})
	}
	return err
}

// ChangelogFinalize stamps the first changelog entry with v and date.
// A zero v means the manifest version; a zero date means today.
func (r *Runner) ChangelogFinalize(v version.Version, date time.Time) (version.Version, error) {
	if v.IsZero() {
		current, err := manifest.ReadVersion(r.Layout.Manifest)
		if err != nil {
			return version.Version{}, err
		}
		v = current
	}
	if date.IsZero() {
		date = r.now()
	}
	if err := r.confirm(fmt.Sprintf("Finalize the changelog as %s (%s)?", v, date.Format(changelog.DateLayout))); err != nil {
		return version.Version{}, err
	}

	if err := changelog.FinalizeChangelogEntry(r.Layout.Changelog, v.String(), date); err != nil {
		return version.Version{}, err
	}
	r.progress.Success(fmt.Sprintf("%s finalized for %s", filepath.Base(r.Layout.Changelog), v))
	return v, nil
}

// MigrationResult describes a created migration.
type MigrationResult struct {
	Version version.Version
	File    string
	List    migration.Masterlist
}

// MigrationNew creates the migration for the next version, appends it to
// the master list and regenerates the migrator index. The manifest is not
// changed.
func (r *Runner) MigrationNew() (*MigrationResult, error) {
	l := r.Layout
	current, err := manifest.ReadVersion(l.Manifest)
	if err != nil {
		return nil, err
	}
	next := current.Bump()
	if err := r.checkMigration(next); err != nil {
		return nil, err
	}

	if err := r.confirm(fmt.Sprintf("Create migration %s for %s?", migration.FileName(next), l.Mod)); err != nil {
		return nil, err
	}

	res := &MigrationResult{Version: next}
	var s steps
	err = s.run("create migration file", func() error {
		file, err := migration.CreateFromTemplate(l.MigrationTemplate, l.MigrationsDir, next)
		if err != nil {
			return err
		}
		res.File = file
		r.progress.Success(r.rel(file) + " created")
		return nil
	})
	if err == nil {
		err = s.run("append to master list", func() error {
			list, err := migration.AppendMigration(l.Masterlist, next)
			if err != nil {
				return err
			}
			res.List = list
			r.progress.Success(fmt.Sprintf("%s appended to %s", next, filepath.Base(l.Masterlist)))
			return nil
		})
	}
	if err == nil {
		err = s.run("regenerate migrator index", func() error {
			return r.regenerate(res.List)
		})
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// checkMigration runs the master-list and migrator checks of MigrationNew
// without writing, so a rejected migration leaves no file behind.
func (r *Runner) checkMigration(next version.Version) error {
	list, err := migration.LoadMasterlist(r.Layout.Masterlist)
	if err != nil {
		return err
	}
	if list.Contains(next.String()) {
		return &migration.DuplicateVersionError{Version: next.String()}
	}
	content, err := os.ReadFile(r.Layout.Migrator)
	if err != nil {
		return fmt.Errorf("reading migrator: %w", err)
	}
	planned := append(list[:len(list):len(list)], next.String())
	if _, err := migration.RegenerateContent(string(content), planned, r.indexOptions()); err != nil {
		return fmt.Errorf("%s: %w", r.rel(r.Layout.Migrator), err)
	}
	return nil
}

// MigrationRegen rewrites the migrator index from the current master list
// and reports where the list and the files on disk disagree.
func (r *Runner) MigrationRegen() (migration.Consistency, error) {
	list, err := migration.LoadMasterlist(r.Layout.Masterlist)
	if err != nil {
		return migration.Consistency{}, err
	}
	if err := r.confirm(fmt.Sprintf("Regenerate %s from %d master-list entries?", filepath.Base(r.Layout.Migrator), len(list))); err != nil {
		return migration.Consistency{}, err
	}
	if err := r.regenerate(list); err != nil {
		return migration.Consistency{}, err
	}
	return migration.CheckConsistency(list, r.Layout.MigrationsDir)
}

func (r *Runner) regenerate(list migration.Masterlist) error {
	if err := migration.RegenerateMigratorIndex(r.Layout.Migrator, list, r.indexOptions()); err != nil {
		return err
	}
	r.progress.Success(fmt.Sprintf("%s regenerated (%d migrations)", filepath.Base(r.Layout.Migrator), len(list)))
	return nil
}

// SetDevMode comments or uncomments the dev-mode flag line. It reports
// whether the file changed.
func (r *Runner) SetDevMode(enabled bool) (bool, error) {
	state := "off"
	if enabled {
		state = "on"
	}
	if err := r.confirm(fmt.Sprintf("Turn dev mode %s for %s?", state, r.Layout.Mod)); err != nil {
		return false, err
	}

	changed, err := devmode.Set(r.Layout.DevModeFile, enabled, r.devModeOptions())
	if err != nil {
		return false, err
	}
	if changed {
		r.progress.Success("dev mode " + state)
	} else {
		r.progress.Success("dev mode already " + state)
	}
	return changed, nil
}

// Link makes the mods folder hold exactly one link for the manifest version.
func (r *Runner) Link() (string, error) {
	v, err := manifest.ReadVersion(r.Layout.Manifest)
	if err != nil {
		return "", err
	}
	if err := r.confirm(fmt.Sprintf("Link %s into %s?", r.Layout.VersionedName(v), r.rel(r.Layout.ModsDir))); err != nil {
		return "", err
	}

	link, err := r.syncModLink(v)
	if err != nil {
		return "", err
	}
	r.progress.Success("mod folder linked as " + filepath.Base(link))
	return link, nil
}
