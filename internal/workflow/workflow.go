// Package workflow implements modkit's commands as ordered steps over the
// bookkeeping packages and the side-effect collaborators.
// Related: internal/workflow/release.go, internal/workflow/bookkeeping.go, internal/workflow/game.go
// Tags: workflow, release, steps
package workflow

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ariel-frischer/modkit/internal/archive"
	"github.com/ariel-frischer/modkit/internal/changelog"
	"github.com/ariel-frischer/modkit/internal/config"
	"github.com/ariel-frischer/modkit/internal/devmode"
	"github.com/ariel-frischer/modkit/internal/git"
	"github.com/ariel-frischer/modkit/internal/layout"
	"github.com/ariel-frischer/modkit/internal/linker"
	"github.com/ariel-frischer/modkit/internal/logging"
	"github.com/ariel-frischer/modkit/internal/migration"
	"github.com/ariel-frischer/modkit/internal/progress"
	"github.com/ariel-frischer/modkit/internal/prompt"
	"github.com/rs/zerolog"
)

// Repository is the subset of git operations the commands need.
type Repository interface {
	Branches() ([]git.BranchInfo, error)
	CurrentBranch() (string, error)
	Checkout(branch string) error
	AddAll() error
	Commit(msg string) (string, error)
	Push(ctx context.Context, remote string) error
}

// RepoOpener opens the repository containing path.
type RepoOpener func(path string) (Repository, error)

// Runner executes commands for one mod.
type Runner struct {
	Config *config.Configuration
	Layout *layout.Layout

	linker   linker.Linker
	archiver archive.Archiver
	prompter prompt.Prompter
	openRepo RepoOpener
	progress *progress.Reporter
	now      func() time.Time
	logger   zerolog.Logger
}

// Options holds the collaborators for a Runner. Nil fields get the
// production implementation.
type Options struct {
	Linker   linker.Linker
	Archiver archive.Archiver
	Prompter prompt.Prompter
	OpenRepo RepoOpener
	Out      io.Writer
	Now      func() time.Time
}

// New creates a Runner for the mod described by lay.
func New(cfg *config.Configuration, lay *layout.Layout, opts Options) *Runner {
	r := &Runner{
		Config:   cfg,
		Layout:   lay,
		linker:   opts.Linker,
		archiver: opts.Archiver,
		prompter: opts.Prompter,
		openRepo: opts.OpenRepo,
		now:      opts.Now,
		logger:   logging.GetLogger("workflow").With().Str("mod", lay.Mod).Logger(),
	}
	if r.linker == nil {
		r.linker = linker.New()
	}
	if r.archiver == nil {
		r.archiver = archive.New()
	}
	if r.prompter == nil {
		r.prompter = prompt.New()
	}
	if r.openRepo == nil {
		fallback := git.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
		r.openRepo = func(path string) (Repository, error) {
			return git.Open(path, fallback)
		}
	}
	if r.now == nil {
		r.now = time.Now
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
		r.progress = progress.NewReporter(out, progress.TerminalCapabilities{})
	} else {
		r.progress = progress.NewReporter(out, progress.DetectTerminalCapabilities())
	}
	return r
}

// confirm asks question unless confirmations are skipped.
func (r *Runner) confirm(question string) error {
	if r.Config.SkipConfirmations {
		return nil
	}
	if !r.prompter.Confirm(question) {
		return ErrAborted
	}
	return nil
}

func (r *Runner) devModeOptions() devmode.Options {
	return devmode.Options{
		Flag:          r.Config.DevMode.Flag,
		CommentPrefix: r.Config.DevMode.CommentPrefix,
	}
}

func (r *Runner) indexOptions() migration.IndexOptions {
	return migration.IndexOptions{
		Mode:          migration.Mode(r.Config.Migrations.MigratorMode),
		RequireFormat: r.Config.Migrations.RequireFormat,
		EntryFormat:   r.Config.Migrations.EntryFormat,
	}
}

func (r *Runner) changelogTemplate() changelog.Template {
	t := changelog.DefaultTemplate()
	c := r.Config.Changelog
	if c.PlaceholderVersion != "" {
		t.PlaceholderVersion = c.PlaceholderVersion
	}
	if c.PlaceholderDate != "" {
		t.PlaceholderDate = c.PlaceholderDate
	}
	if len(c.Sections) > 0 {
		t.Sections = append([]string(nil), c.Sections...)
	}
	return t
}

// rel shortens path for messages.
func (r *Runner) rel(path string) string {
	if rel, err := filepath.Rel(r.Layout.Workspace, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}
