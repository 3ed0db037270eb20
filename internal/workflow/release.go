package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ariel-frischer/modkit/internal/changelog"
	"github.com/ariel-frischer/modkit/internal/devmode"
	"github.com/ariel-frischer/modkit/internal/fileutil"
	"github.com/ariel-frischer/modkit/internal/logging"
	"github.com/ariel-frischer/modkit/internal/manifest"
	"github.com/ariel-frischer/modkit/internal/version"
)

// Release step names, in execution order.
const (
	StepBump      = "bump version"
	StepRelink    = "relink mod folder"
	StepDevMode   = "disable dev mode"
	StepChangelog = "finalize changelog"
	StepZip       = "build zip"
	StepWorkspace = "update workspace file"
	StepCommit    = "commit"
	StepPush      = "push"
)

// ReleaseOptions narrows a release.
type ReleaseOptions struct {
	NoCommit bool
	NoPush   bool
}

// ReleaseResult describes a finished release.
type ReleaseResult struct {
	Previous version.Version
	Version  version.Version
	Zip      string
	Commit   string // empty when not committed
	Pushed   bool
	Steps    []string
}

// Release bumps the version, relinks the mod folder, disables dev mode,
// finalizes the changelog, zips the mod and commits and pushes the result.
// The first failing step stops the run; earlier steps stay applied.
func (r *Runner) Release(ctx context.Context, opts ReleaseOptions) (*ReleaseResult, error) {
	l := r.Layout
	done := logging.LogOperationStart(r.logger, "release")
	defer done()

	current, err := manifest.ReadVersion(l.Manifest)
	if err != nil {
		return nil, err
	}
	next := current.Bump()

	commit := r.Config.Release.Commit && !opts.NoCommit
	push := commit && r.Config.Release.Push && !opts.NoPush

	var repo Repository
	if commit {
		if repo, err = r.openRepo(l.ProjectDir); err != nil {
			return nil, err
		}
	}

	if err := r.confirm(fmt.Sprintf("Sure to build a release of %s %s → %s?", l.Mod, current, next)); err != nil {
		return nil, err
	}

	res := &ReleaseResult{Previous: current}
	var s steps

	err = s.run(StepBump, func() error {
		v, err := manifest.BumpVersion(l.Manifest)
		if err != nil {
			return err
		}
		res.Version = v
		r.progress.Success(fmt.Sprintf("%s version bumped to %s", filepath.Base(l.Manifest), v))
		return nil
	})
	if err == nil {
		err = s.run(StepRelink, func() error {
			link, err := r.syncModLink(res.Version)
			if err == nil {
				r.progress.Success("mod folder linked as " + filepath.Base(link))
			}
			return err
		})
	}
	if err == nil {
		err = s.run(StepDevMode, func() error {
			changed, err := devmode.Set(l.DevModeFile, false, r.devModeOptions())
			if err != nil {
				return err
			}
			if changed {
				r.progress.Success("dev mode disabled")
			}
			return nil
		})
	}
	if err == nil {
		err = s.run(StepChangelog, func() error {
			if err := changelog.FinalizeChangelogEntry(l.Changelog, res.Version.String(), r.now()); err != nil {
				return err
			}
			r.progress.Success(fmt.Sprintf("%s finalized for %s", filepath.Base(l.Changelog), res.Version))
			return nil
		})
	}
	if err == nil {
		err = s.run(StepZip, func() error {
			res.Zip = l.ReleaseZip(res.Version)
			return r.progress.Run("zipped "+r.rel(res.Zip), func() error {
				return r.archiver.Create(l.ModfilesDir, l.VersionedName(res.Version), res.Zip, r.releaseExtras())
			})
		})
	}
	if err == nil && l.WorkspaceFile != "" {
		err = s.run(StepWorkspace, func() error {
			changed, err := r.updateWorkspaceFile(res.Version)
			if changed {
				r.progress.Success(filepath.Base(l.WorkspaceFile) + " updated")
			}
			return err
		})
	}
	if err == nil && commit {
		err = s.run(StepCommit, func() error {
			if err := repo.AddAll(); err != nil {
				return err
			}
			hash, err := repo.Commit(fmt.Sprintf(r.Config.Git.CommitMessage, res.Version))
			if err != nil {
				return err
			}
			res.Commit = hash
			r.progress.Success("committed " + shortHash(hash))
			return nil
		})
	}
	if err == nil && push {
		err = s.run(StepPush, func() error {
			return r.progress.Run("pushed to "+r.Config.Git.Remote, func() error {
				pushCtx := ctx
				if d := r.Config.Git.PushTimeout; d > 0 {
					var cancel context.CancelFunc
					pushCtx, cancel = context.WithTimeout(ctx, d)
					defer cancel()
				}
				return repo.Push(pushCtx, r.Config.Git.Remote)
			})
		})
		res.Pushed = err == nil
	}

	res.Steps = s.Completed()
	if err != nil {
		r.logger.Error().Err(err).Strs("completed", res.Steps).Msg("release failed")
		return res, err
	}
	r.logger.Info().Str("version", res.Version.String()).Msg("release finished")
	return res, nil
}

// releaseExtras returns files added to the zip root without touching the
// tree. A missing license is skipped with a warning.
func (r *Runner) releaseExtras() map[string]string {
	if !r.Config.Release.IncludeLicense {
		return nil
	}
	if !fileutil.Exists(r.Layout.License) {
		r.logger.Warn().Str("path", r.Layout.License).Msg("license not found, zipping without it")
		return nil
	}
	return map[string]string{filepath.Base(r.Layout.License): r.Layout.License}
}

// ensureDir is used by steps that write below directories that may not
// exist yet in a fresh checkout.
func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	return nil
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
