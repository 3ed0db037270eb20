// Package linker manages the filesystem links that connect the game's mods
// folder to the mod source tree. On unix these are symlinks; on Windows
// directories are linked with junctions and files with mklink.
package linker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ariel-frischer/modkit/internal/version"
)

// ErrNotLink is returned when an operation expects a link but finds a
// regular file or directory.
var ErrNotLink = errors.New("not a link")

// Linker creates and removes links.
type Linker interface {
	Link(target, link string) error
	Unlink(link string) error
	Relink(oldLink, newLink, target string) error
	IsLink(path string) bool
}

// OSLinker is the Linker backed by the real filesystem.
type OSLinker struct{}

// New returns an OSLinker.
func New() *OSLinker {
	return &OSLinker{}
}

// Link creates link pointing at target. The parent of link must exist.
func (OSLinker) Link(target, link string) error {
	abs, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", target, err)
	}
	if err := createLink(abs, link); err != nil {
		return fmt.Errorf("linking %s -> %s: %w", link, abs, err)
	}
	return nil
}

// Unlink removes link without touching its target.
func (l OSLinker) Unlink(link string) error {
	if !l.IsLink(link) {
		return fmt.Errorf("%s: %w", link, ErrNotLink)
	}
	if err := os.Remove(link); err != nil {
		return fmt.Errorf("removing link %s: %w", link, err)
	}
	return nil
}

// Relink moves oldLink to newLink so that it points at target. A missing
// oldLink is not an error; newLink is created fresh.
func (l OSLinker) Relink(oldLink, newLink, target string) error {
	if oldLink != "" && l.IsLink(oldLink) {
		if oldLink == newLink && pointsAt(oldLink, target) {
			return nil
		}
		if pointsAt(oldLink, target) {
			if err := os.Rename(oldLink, newLink); err != nil {
				return fmt.Errorf("renaming link %s -> %s: %w", oldLink, newLink, err)
			}
			return nil
		}
		if err := l.Unlink(oldLink); err != nil {
			return err
		}
	}

	if oldLink != newLink && l.IsLink(newLink) {
		if err := l.Unlink(newLink); err != nil {
			return err
		}
	}
	return l.Link(target, newLink)
}

// IsLink reports whether path is a symlink or junction.
func (OSLinker) IsLink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return isLinkMode(info.Mode())
}

func pointsAt(link, target string) bool {
	dest, err := filepath.EvalSymlinks(link)
	if err != nil {
		return false
	}
	want, err := filepath.EvalSymlinks(target)
	if err != nil {
		return false
	}
	return dest == want
}

// FindVersioned lists entries of dir named "<mod>_<version>", sorted.
// Entries whose suffix is not a version are ignored.
func FindVersioned(dir, mod string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	prefix := mod + "_"
	var found []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if _, err := version.Parse(strings.TrimPrefix(name, prefix)); err != nil {
			continue
		}
		found = append(found, filepath.Join(dir, name))
	}
	sort.Strings(found)
	return found, nil
}
