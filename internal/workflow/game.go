package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ariel-frischer/modkit/internal/fileutil"
	"github.com/ariel-frischer/modkit/internal/manifest"
	"golang.org/x/sync/errgroup"
)

// Game update step names, in execution order.
const (
	StepExtract   = "extract"
	StepSettings  = "write settings"
	StepGameLinks = "relink executable and log"
	StepModsDir   = "create mods folder"
	StepCarryOver = "carry over files"
	StepCleanup   = "remove old install"
)

// InstallError reports that the current game install could not be
// determined from the configured prefix.
type InstallError struct {
	Parent  string
	Prefix  string
	Matches []string
}

func (e *InstallError) Error() string {
	if len(e.Matches) == 0 {
		return fmt.Sprintf("no %s* install in %s", e.Prefix, e.Parent)
	}
	return fmt.Sprintf("%d %s* installs in %s: %s", len(e.Matches), e.Prefix, e.Parent, strings.Join(e.Matches, ", "))
}

// GameResult describes a finished game update.
type GameResult struct {
	Previous string
	Install  string
	Copied   int
	Steps    []string
}

// GameUpdate replaces the current game install with the one in archivePath.
// The new install gets the configured settings, the executable and log
// links, a mods folder linking this mod, and the carried-over files of the
// old install, which is then removed.
func (r *Runner) GameUpdate(ctx context.Context, archivePath string) (*GameResult, error) {
	g := r.Config.Game
	parent := r.gameParent()

	if _, err := os.Stat(archivePath); err != nil {
		return nil, fmt.Errorf("game archive: %w", err)
	}
	old, err := r.currentInstall(parent)
	if err != nil {
		return nil, err
	}
	if err := r.confirm(fmt.Sprintf("Replace %s with %s?", filepath.Base(old), filepath.Base(archivePath))); err != nil {
		return nil, err
	}

	res := &GameResult{Previous: old}
	var s steps

	err = s.run(StepExtract, func() error {
		return r.progress.Run("extracted "+filepath.Base(archivePath), func() error {
			install, err := r.extractInstall(archivePath, parent)
			res.Install = install
			return err
		})
	})
	if err == nil {
		err = s.run(StepSettings, func() error {
			path := filepath.Join(res.Install, "config", "config.ini")
			if err := ensureDir(filepath.Dir(path)); err != nil {
				return err
			}
			if err := fileutil.WriteAtomic(path, []byte(strings.TrimRight(g.Settings, "\n")+"\n")); err != nil {
				return err
			}
			r.progress.Success("settings written to " + r.rel(path))
			return nil
		})
	}
	if err == nil {
		err = s.run(StepGameLinks, func() error {
			exe := filepath.Join(parent, g.ExeLink)
			if err := r.linker.Relink(exe, exe, filepath.Join(res.Install, filepath.FromSlash(g.ExePath))); err != nil {
				return err
			}
			log := filepath.Join(parent, g.LogLink)
			if err := r.linker.Relink(log, log, filepath.Join(res.Install, filepath.FromSlash(g.LogFile))); err != nil {
				return err
			}
			r.progress.Success(fmt.Sprintf("%s and %s relinked", g.ExeLink, g.LogLink))
			return nil
		})
	}
	if err == nil {
		err = s.run(StepModsDir, func() error {
			v, err := manifest.ReadVersion(r.Layout.Manifest)
			if err != nil {
				return err
			}
			mods := filepath.Join(res.Install, "mods")
			if err := ensureDir(mods); err != nil {
				return err
			}
			if err := r.linker.Link(r.Layout.ModfilesDir, filepath.Join(mods, r.Layout.VersionedName(v))); err != nil {
				return err
			}
			r.progress.Success("mods folder created with " + r.Layout.VersionedName(v))
			return nil
		})
	}
	if err == nil {
		err = s.run(StepCarryOver, func() error {
			n, err := r.carryOver(ctx, old, res.Install)
			res.Copied = n
			if err == nil {
				r.progress.Success(fmt.Sprintf("%d files carried over", n))
			}
			return err
		})
	}
	if err == nil {
		err = s.run(StepCleanup, func() error {
			if err := r.unlinkMods(old); err != nil {
				return err
			}
			if err := os.RemoveAll(old); err != nil {
				return fmt.Errorf("removing %s: %w", old, err)
			}
			if g.RemoveArchive {
				if err := os.Remove(archivePath); err != nil {
					return fmt.Errorf("removing archive: %w", err)
				}
			}
			r.progress.Success("removed " + filepath.Base(old))
			return nil
		})
	}

	res.Steps = s.Completed()
	if err != nil {
		return res, err
	}
	return res, nil
}

func (r *Runner) gameParent() string {
	parent := r.Config.Game.ParentDir
	if parent == "" {
		return r.Layout.Workspace
	}
	if !filepath.IsAbs(parent) {
		parent = filepath.Join(r.Layout.Workspace, parent)
	}
	return filepath.Clean(parent)
}

// currentInstall returns the configured install or the only directory in
// parent carrying the install prefix.
func (r *Runner) currentInstall(parent string) (string, error) {
	g := r.Config.Game
	if g.InstallDir != "" {
		dir := g.InstallDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(parent, dir)
		}
		info, err := os.Stat(dir)
		if err != nil {
			return "", fmt.Errorf("game install: %w", err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("game install %s is not a directory", dir)
		}
		return dir, nil
	}

	entries, err := os.ReadDir(parent)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", parent, err)
	}
	var matches []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), g.InstallPrefix) {
			matches = append(matches, e.Name())
		}
	}
	if len(matches) != 1 {
		return "", &InstallError{Parent: parent, Prefix: g.InstallPrefix, Matches: matches}
	}
	return filepath.Join(parent, matches[0]), nil
}

// extractInstall unpacks the archive into a scratch directory inside parent
// and moves its single top-level directory next to the current install.
func (r *Runner) extractInstall(archivePath, parent string) (string, error) {
	scratch, err := os.MkdirTemp(parent, ".modkit-extract-")
	if err != nil {
		return "", fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	names, err := r.archiver.Extract(archivePath, scratch)
	if err != nil {
		return "", err
	}
	if len(names) != 1 {
		return "", fmt.Errorf("archive must contain exactly one top-level directory, found %d", len(names))
	}

	install := filepath.Join(parent, names[0])
	if fileutil.Exists(install) {
		return "", fmt.Errorf("%s already exists", install)
	}
	if err := os.Rename(filepath.Join(scratch, names[0]), install); err != nil {
		return "", fmt.Errorf("moving extracted install: %w", err)
	}
	r.logger.Debug().Str("install", install).Msg("game extracted")
	return install, nil
}

// carryOver copies the configured files and the zips of the configured
// directories from old to install, with bounded parallelism.
func (r *Runner) carryOver(ctx context.Context, old, install string) (int, error) {
	g := r.Config.Game

	var files []string
	for _, rel := range g.CarryOver {
		rel = filepath.FromSlash(rel)
		if fileutil.Exists(filepath.Join(old, rel)) {
			files = append(files, rel)
		} else {
			r.logger.Debug().Str("file", rel).Msg("nothing to carry over")
		}
	}
	for _, dir := range g.CarryOverZips {
		matches, err := filepath.Glob(filepath.Join(old, filepath.FromSlash(dir), "*.zip"))
		if err != nil {
			return 0, err
		}
		for _, m := range matches {
			rel, err := filepath.Rel(old, m)
			if err != nil {
				return 0, err
			}
			files = append(files, rel)
		}
	}
	sort.Strings(files)

	workers := g.CopyWorkers
	if workers < 1 {
		workers = 1
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, rel := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fileutil.CopyFile(filepath.Join(old, rel), filepath.Join(install, rel))
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}
	return len(files), nil
}

// unlinkMods removes the links in an install's mods folder. It runs before
// the install is deleted; junctions must not be followed into the mod tree.
func (r *Runner) unlinkMods(install string) error {
	mods := filepath.Join(install, "mods")
	entries, err := os.ReadDir(mods)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", mods, err)
	}
	for _, e := range entries {
		p := filepath.Join(mods, e.Name())
		if r.linker.IsLink(p) {
			if err := r.linker.Unlink(p); err != nil {
				return err
			}
		}
	}
	return nil
}
