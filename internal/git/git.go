// Package git wraps the go-git operations modkit needs for releases and
// branch switching: listing and checking out branches, staging everything,
// committing and pushing.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}


// ErrNoAuthor is returned by Commit when neither git config nor the modkit
// configuration provides an author.
var ErrNoAuthor = errors.New("no commit author: set user.name and user.email in git config or git.author_name/git.author_email in modkit config")

// Author is the fallback commit identity.
type Author struct {
	Name  string
	Email string
}

// Repo is a git repository opened at a mod's project directory.
type Repo struct {
	repo     *git.Repository
	fallback Author
}

// Open opens the repository containing path, walking up to find .git.
func Open(path string, fallback Author) (*Repo, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	return &Repo{repo: repo, fallback: fallback}, nil
}

// Root returns the worktree root.
func (r *Repo) Root() (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

// CurrentBranch returns the checked-out branch, or "" on a detached HEAD.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}

	if !head.Name().IsBranch() {
		logDebug("[git] CurrentBranch: detached HEAD state")
		return "", nil
	}

	branch := head.Name().Short()
	logDebug("[git] CurrentBranch: %s", branch)
	return branch, nil
}

// BranchInfo contains metadata about a git branch
type BranchInfo struct {
	Name     string
	IsRemote bool
	Remote   string // Remote name (e.g., "origin") if IsRemote is true
}

// Branches returns local and remote-tracking branches sorted by name.
// A branch present both locally and on a remote is listed once, as local.
func (r *Repo) Branches() ([]BranchInfo, error) {
	seen := make(map[string]bool)
	var branches []BranchInfo

	branches, err := collectLocalBranches(r.repo, branches, seen)
	if err != nil {
		return nil, err
	}

	branches, err = collectRemoteBranches(r.repo, branches, seen)
	if err != nil {
		return nil, err
	}

	sort.Slice(branches, func(i, j int) bool {
		return branches[i].Name < branches[j].Name
	})

	logDebug("[git] Branches: found %d branches", len(branches))
	return branches, nil
}

func collectLocalBranches(repo *git.Repository, branches []BranchInfo, seen map[string]bool) ([]BranchInfo, error) {
	iter, err := repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("listing local branches: %w", err)
	}

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if strings.Contains(name, "HEAD") {
			return nil
		}
		branches = addBranchWithDedup(branches, BranchInfo{Name: name}, seen)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating local branches: %w", err)
	}
	return branches, nil
}

func collectRemoteBranches(repo *git.Repository, branches []BranchInfo, seen map[string]bool) ([]BranchInfo, error) {
	iter, err := repo.References()
	if err != nil {
		return nil, fmt.Errorf("listing references: %w", err)
	}

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if !ref.Name().IsRemote() {
			return nil
		}

		fullName := ref.Name().Short() // e.g., "origin/main"
		if strings.Contains(fullName, "HEAD") {
			return nil
		}

		remote, name, ok := strings.Cut(fullName, "/")
		if !ok {
			return nil
		}
		branches = addBranchWithDedup(branches, BranchInfo{Name: name, IsRemote: true, Remote: remote}, seen)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating remote branches: %w", err)
	}
	return branches, nil
}

// addBranchWithDedup adds a branch, preferring local over remote when the
// name was already seen.
func addBranchWithDedup(branches []BranchInfo, info BranchInfo, seen map[string]bool) []BranchInfo {
	if seen[info.Name] {
		if !info.IsRemote {
			for i, b := range branches {
				if b.Name == info.Name && b.IsRemote {
					branches[i] = info
					break
				}
			}
		}
		return branches
	}

	seen[info.Name] = true
	return append(branches, info)
}

// Checkout switches to branch. A branch that only exists on a remote is
// created locally from the remote-tracking ref.
func (r *Repo) Checkout(branch string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	// Keep: true preserves untracked files such as build output and userdata.
	opts := &git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Keep:   true,
	}

	if _, err := r.repo.Reference(opts.Branch, false); err != nil {
		if !errors.Is(err, plumbing.ErrReferenceNotFound) {
			return fmt.Errorf("looking up branch '%s': %w", branch, err)
		}
		hash, remoteErr := r.remoteBranchHash(branch)
		if remoteErr != nil {
			return fmt.Errorf("branch '%s' not found", branch)
		}
		opts.Hash = hash
		opts.Create = true
	}

	if err := wt.Checkout(opts); err != nil {
		return fmt.Errorf("checking out '%s': %w", branch, err)
	}

	logDebug("[git] Checkout: %s (created=%v)", branch, opts.Create)
	return nil
}

func (r *Repo) remoteBranchHash(branch string) (plumbing.Hash, error) {
	remotes, err := r.repo.Remotes()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	for _, remote := range remotes {
		ref, err := r.repo.Reference(plumbing.NewRemoteReferenceName(remote.Config().Name, branch), true)
		if err == nil {
			return ref.Hash(), nil
		}
	}
	return plumbing.ZeroHash, plumbing.ErrReferenceNotFound
}

// AddAll stages every change in the worktree, including deletions.
func (r *Repo) AddAll() error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("staging changes: %w", err)
	}
	return nil
}

// Commit records the staged changes and returns the new commit hash.
func (r *Repo) Commit(msg string) (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}

	author, err := r.signature()
	if err != nil {
		return "", err
	}

	hash, err := wt.Commit(msg, &git.CommitOptions{Author: author})
	if err != nil {
		return "", fmt.Errorf("committing: %w", err)
	}

	logDebug("[git] Commit: %s %q", hash, msg)
	return hash.String(), nil
}

// signature resolves the author from git config, falling back to the
// configured identity.
func (r *Repo) signature() (*object.Signature, error) {
	var name, email string
	if cfg, err := r.repo.ConfigScoped(config.GlobalScope); err == nil {
		name, email = cfg.User.Name, cfg.User.Email
	} else {
		logDebug("[git] reading git config: %v", err)
	}

	if name == "" {
		name = r.fallback.Name
	}
	if email == "" {
		email = r.fallback.Email
	}
	if name == "" || email == "" {
		return nil, ErrNoAuthor
	}

	return &object.Signature{Name: name, Email: email, When: time.Now()}, nil
}

// Push pushes the current branch to the same-named branch on remote.
// It runs until ctx is done; an up-to-date remote is not an error.
func (r *Repo) Push(ctx context.Context, remoteName string) error {
	remote, err := r.repo.Remote(remoteName)
	if err != nil {
		return fmt.Errorf("looking up remote '%s': %w", remoteName, err)
	}

	var auth transport.AuthMethod
	if urls := remote.Config().URLs; len(urls) > 0 {
		auth = getAuthForURL(urls[0])
		logDebug("[git] pushing to remote '%s' (%s)", remoteName, urls[0])
	}

	branch, err := r.CurrentBranch()
	if err != nil {
		return err
	}
	if branch == "" {
		return fmt.Errorf("cannot push from a detached HEAD")
	}
	ref := plumbing.NewBranchReferenceName(branch)

	err = r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{config.RefSpec(ref + ":" + ref)},
		Auth:       auth,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("pushing to '%s': %w", remoteName, err)
	}
	return nil
}

// getAuthForURL returns the appropriate authentication method for a remote URL.
// SSH URLs use SSH agent auth, HTTPS URLs use environment credentials.
func getAuthForURL(url string) transport.AuthMethod {
	if isSSHURL(url) {
		if !isSSHAgentAvailable() {
			logDebug("[git] SSH URL without SSH agent available")
			return nil
		}
		auth, err := ssh.NewSSHAgentAuth("git")
		if err != nil {
			logDebug("[git] SSH agent auth failed: %v", err)
			return nil
		}
		return auth
	}

	username := os.Getenv("GIT_USERNAME")
	password := os.Getenv("GIT_PASSWORD")
	if username == "" {
		username = os.Getenv("GITHUB_TOKEN")
		if username != "" {
			password = "" // GitHub token can be used as username with empty password
		}
	}

	if username != "" {
		return &http.BasicAuth{
			Username: username,
			Password: password,
		}
	}
	return nil
}

// isSSHURL detects git@ (SCP-style), ssh:// and git+ssh:// remotes.
func isSSHURL(url string) bool {
	return strings.HasPrefix(url, "git@") ||
		strings.HasPrefix(url, "ssh://") ||
		strings.HasPrefix(url, "git+ssh://")
}

func isSSHAgentAvailable() bool {
	return strings.TrimSpace(os.Getenv("SSH_AUTH_SOCK")) != ""
}
