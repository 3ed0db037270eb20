package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ariel-frischer/modkit/internal/git"
	"github.com/ariel-frischer/modkit/internal/linker"
)

// fakeLinker records links in memory and leaves an empty marker file at
// each link path so directory listings see it.
type fakeLinker struct {
	links map[string]string
	calls []string
	err   error
}

func newFakeLinker() *fakeLinker {
	return &fakeLinker{links: make(map[string]string)}
}

func (f *fakeLinker) Link(target, link string) error {
	f.calls = append(f.calls, "link "+filepath.Base(link))
	if f.err != nil {
		return f.err
	}
	if _, err := os.Lstat(link); err == nil {
		return fmt.Errorf("%s exists", link)
	}
	if err := os.WriteFile(link, nil, 0o644); err != nil {
		return err
	}
	f.links[link] = target
	return nil
}

func (f *fakeLinker) Unlink(link string) error {
	f.calls = append(f.calls, "unlink "+filepath.Base(link))
	if _, ok := f.links[link]; !ok {
		return fmt.Errorf("%s: %w", link, linker.ErrNotLink)
	}
	delete(f.links, link)
	return os.Remove(link)
}

func (f *fakeLinker) Relink(oldLink, newLink, target string) error {
	f.calls = append(f.calls, fmt.Sprintf("relink %s -> %s", filepath.Base(oldLink), filepath.Base(newLink)))
	if f.err != nil {
		return f.err
	}
	if _, ok := f.links[oldLink]; ok {
		delete(f.links, oldLink)
		if err := os.Remove(oldLink); err != nil {
			return err
		}
	}
	if _, ok := f.links[newLink]; ok {
		delete(f.links, newLink)
		if err := os.Remove(newLink); err != nil {
			return err
		}
	}
	if err := os.WriteFile(newLink, nil, 0o644); err != nil {
		return err
	}
	f.links[newLink] = target
	return nil
}

func (f *fakeLinker) IsLink(path string) bool {
	_, ok := f.links[path]
	return ok
}

// add registers an existing link, creating its marker file.
func (f *fakeLinker) add(link, target string) error {
	f.links[link] = target
	return os.WriteFile(link, nil, 0o644)
}

// fakeArchiver records Create calls. Extract writes the configured tree.
type fakeArchiver struct {
	created    []createCall
	createErr  error
	extractDir map[string]string // relative path -> content
	extractErr error
}

type createCall struct {
	SrcDir, RootName, Dest string
	Extras                 map[string]string
}

func (f *fakeArchiver) Create(srcDir, rootName, dest string, extras map[string]string) error {
	f.created = append(f.created, createCall{srcDir, rootName, dest, extras})
	if f.createErr != nil {
		return f.createErr
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte("zip"), 0o644)
}

func (f *fakeArchiver) Extract(zipPath, destDir string) ([]string, error) {
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	top := make(map[string]bool)
	for rel, content := range f.extractDir {
		p := filepath.Join(destDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			return nil, err
		}
		top[splitTop(rel)] = true
	}
	var names []string
	for n := range top {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func splitTop(rel string) string {
	for i, c := range rel {
		if c == '/' {
			return rel[:i]
		}
	}
	return rel
}

// fakePrompter answers every confirmation with answer and every choice
// with choice.
type fakePrompter struct {
	answer    bool
	choice    int
	questions []string
	options   []string
}

func (f *fakePrompter) Confirm(question string) bool {
	f.questions = append(f.questions, question)
	return f.answer
}

func (f *fakePrompter) Choose(question string, options []string) (int, error) {
	f.questions = append(f.questions, question)
	f.options = options
	if f.choice < 0 || f.choice >= len(options) {
		return 0, errors.New("invalid choice")
	}
	return f.choice, nil
}

// fakeRepo records git calls.
type fakeRepo struct {
	branches     []git.BranchInfo
	current      string
	calls        []string
	commitErr    error
	pushErr      error
	onCheckout   func(branch string) error
	pushDeadline bool
	pushedTo     string
	commitMsg    string
}

func (f *fakeRepo) Branches() ([]git.BranchInfo, error) {
	return f.branches, nil
}

func (f *fakeRepo) CurrentBranch() (string, error) {
	return f.current, nil
}

func (f *fakeRepo) Checkout(branch string) error {
	f.calls = append(f.calls, "checkout "+branch)
	if f.onCheckout != nil {
		if err := f.onCheckout(branch); err != nil {
			return err
		}
	}
	f.current = branch
	return nil
}

func (f *fakeRepo) AddAll() error {
	f.calls = append(f.calls, "add")
	return nil
}

func (f *fakeRepo) Commit(msg string) (string, error) {
	f.calls = append(f.calls, "commit")
	f.commitMsg = msg
	if f.commitErr != nil {
		return "", f.commitErr
	}
	return "0123456789abcdef", nil
}

func (f *fakeRepo) Push(ctx context.Context, remote string) error {
	f.calls = append(f.calls, "push")
	f.pushedTo = remote
	_, f.pushDeadline = ctx.Deadline()
	return f.pushErr
}
