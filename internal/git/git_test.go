// Package git tests branch listing, checkout, commit and push against real
// temporary repositories.
// Related: internal/git/git.go
// Tags: git, repository, branch, commit, push

package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuthor = Author{Name: "Modder", Email: "modder@example.com"}

// initRepo creates a repository with one commit on master. HOME is pointed
// at an empty directory so the developer's git config cannot leak in.
func initRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# mod"), 0o644))
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	_, err = wt.Commit("Initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now()},
	})
	require.NoError(t, err)

	return dir, repo
}

func setRef(t *testing.T, repo *git.Repository, name plumbing.ReferenceName) {
	t.Helper()
	head, err := repo.Head()
	require.NoError(t, err)
	require.NoError(t, repo.Storer.SetReference(plumbing.NewHashReference(name, head.Hash())))
}

func TestOpen_DetectsDotGitFromSubdirectory(t *testing.T) {
	dir, _ := initRepo(t)
	sub := filepath.Join(dir, "modfiles", "data")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	r, err := Open(sub, testAuthor)
	require.NoError(t, err)

	root, err := r.Root()
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}

func TestOpen_NotARepository(t *testing.T) {
	t.Parallel()

	_, err := Open(t.TempDir(), testAuthor)
	require.Error(t, err)
}

func TestBranches(t *testing.T) {
	dir, repo := initRepo(t)
	setRef(t, repo, plumbing.NewBranchReferenceName("feature"))
	setRef(t, repo, plumbing.NewRemoteReferenceName("origin", "feature"))
	setRef(t, repo, plumbing.NewRemoteReferenceName("origin", "remote-only"))

	r, err := Open(dir, testAuthor)
	require.NoError(t, err)

	branches, err := r.Branches()
	require.NoError(t, err)
	assert.Equal(t, []BranchInfo{
		{Name: "feature"},
		{Name: "master"},
		{Name: "remote-only", IsRemote: true, Remote: "origin"},
	}, branches)
}

func TestCheckout(t *testing.T) {
	dir, repo := initRepo(t)
	setRef(t, repo, plumbing.NewBranchReferenceName("feature"))
	setRef(t, repo, plumbing.NewRemoteReferenceName("origin", "remote-only"))
	_, err := repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{"https://example.com/mod.git"}})
	require.NoError(t, err)

	untracked := filepath.Join(dir, "releases", "mod_1.0.0.zip")
	require.NoError(t, os.MkdirAll(filepath.Dir(untracked), 0o755))
	require.NoError(t, os.WriteFile(untracked, []byte("zip"), 0o644))

	r, err := Open(dir, testAuthor)
	require.NoError(t, err)

	tests := []struct {
		branch  string
		wantErr bool
	}{
		{branch: "feature"},
		{branch: "remote-only"},
		{branch: "master"},
		{branch: "does-not-exist", wantErr: true},
	}

	for _, tt := range tests {
		err := r.Checkout(tt.branch)
		if tt.wantErr {
			require.Error(t, err, tt.branch)
			continue
		}
		require.NoError(t, err, tt.branch)

		current, err := r.CurrentBranch()
		require.NoError(t, err)
		assert.Equal(t, tt.branch, current)
		assert.FileExists(t, untracked, "untracked files must survive checkout")
	}

	_, err = repo.Reference(plumbing.NewBranchReferenceName("remote-only"), false)
	assert.NoError(t, err, "remote-only branch should now exist locally")
}

func TestCurrentBranch_DetachedHead(t *testing.T) {
	dir, repo := initRepo(t)
	head, err := repo.Head()
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{Hash: head.Hash()}))

	r, err := Open(dir, testAuthor)
	require.NoError(t, err)

	branch, err := r.CurrentBranch()
	require.NoError(t, err)
	assert.Empty(t, branch)
}

func TestAddAllAndCommit(t *testing.T) {
	dir, repo := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "info.json"), []byte(`{"version": "0.17.22"}`), 0o644))
	require.NoError(t, os.Remove(filepath.Join(dir, "README.md")))

	r, err := Open(dir, testAuthor)
	require.NoError(t, err)

	require.NoError(t, r.AddAll())
	hash, err := r.Commit("Release 0.17.22")
	require.NoError(t, err)

	commit, err := repo.CommitObject(plumbing.NewHash(hash))
	require.NoError(t, err)
	assert.Equal(t, "Release 0.17.22", commit.Message)
	assert.Equal(t, testAuthor.Name, commit.Author.Name)
	assert.Equal(t, testAuthor.Email, commit.Author.Email)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	status, err := wt.Status()
	require.NoError(t, err)
	assert.True(t, status.IsClean(), "deletion and addition should both be committed: %s", status)
}

func TestCommit_NoAuthor(t *testing.T) {
	dir, _ := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.lua"), []byte("return {}"), 0o644))

	r, err := Open(dir, Author{})
	require.NoError(t, err)
	require.NoError(t, r.AddAll())

	_, err = r.Commit("Release 1.0.0")
	assert.ErrorIs(t, err, ErrNoAuthor)
}

func TestPush(t *testing.T) {
	if _, err := exec.LookPath("git-receive-pack"); err != nil {
		t.Skip("git-receive-pack not available for local file transport")
	}
	dir, repo := initRepo(t)

	bareDir := t.TempDir()
	bare, err := git.PlainInit(bareDir, true)
	require.NoError(t, err)

	_, err = repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{bareDir}})
	require.NoError(t, err)

	r, err := Open(dir, testAuthor)
	require.NoError(t, err)

	require.NoError(t, r.Push(context.Background(), "origin"))

	head, err := repo.Head()
	require.NoError(t, err)
	pushed, err := bare.Reference(plumbing.NewBranchReferenceName("master"), false)
	require.NoError(t, err)
	assert.Equal(t, head.Hash(), pushed.Hash())

	require.NoError(t, r.Push(context.Background(), "origin"), "up-to-date push is not an error")

	err = r.Push(context.Background(), "upstream")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream")
}

func TestIsSSHURL(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		url  string
		want bool
	}{
		"scp style":  {url: "git@github.com:user/mod.git", want: true},
		"ssh scheme": {url: "ssh://git@github.com/user/mod.git", want: true},
		"git+ssh":    {url: "git+ssh://github.com/user/mod.git", want: true},
		"https":      {url: "https://github.com/user/mod.git", want: false},
		"local path": {url: "/srv/git/mod.git", want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, isSSHURL(tt.url))
		})
	}
}

func TestGetAuthForURL_EnvCredentials(t *testing.T) {
	t.Setenv("GIT_USERNAME", "")
	t.Setenv("GIT_PASSWORD", "")
	t.Setenv("GITHUB_TOKEN", "")
	assert.Nil(t, getAuthForURL("https://github.com/user/mod.git"))

	t.Setenv("GITHUB_TOKEN", "tok")
	auth := getAuthForURL("https://github.com/user/mod.git")
	require.NotNil(t, auth)
	assert.Equal(t, "http-basic-auth", auth.Name())

	t.Setenv("SSH_AUTH_SOCK", "")
	assert.Nil(t, getAuthForURL("git@github.com:user/mod.git"))
}
