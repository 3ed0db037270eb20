package workflow

import (
	"fmt"
	"os"
	"regexp"

	"github.com/ariel-frischer/modkit/internal/fileutil"
	"github.com/ariel-frischer/modkit/internal/linker"
	"github.com/ariel-frischer/modkit/internal/version"
)

// syncModLink leaves exactly one <mod>_<v> link in the mods folder,
// pointing at the modfiles directory. An existing link for another version
// is renamed; any further versioned links are removed.
func (r *Runner) syncModLink(v version.Version) (string, error) {
	l := r.Layout
	if err := os.MkdirAll(l.ModsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating mods folder: %w", err)
	}

	existing, err := linker.FindVersioned(l.ModsDir, l.Mod)
	if err != nil {
		return "", err
	}

	want := l.ModLink(v)
	old := ""
	for _, p := range existing {
		if p == want {
			old = p
		}
	}
	for _, p := range existing {
		if !r.linker.IsLink(p) {
			return "", fmt.Errorf("%s: %w", p, linker.ErrNotLink)
		}
		if old == "" {
			old = p
			continue
		}
		if p != old {
			r.logger.Debug().Str("link", p).Msg("removing stale mod link")
			if err := r.linker.Unlink(p); err != nil {
				return "", err
			}
		}
	}

	r.logger.Debug().Str("from", old).Str("to", want).Msg("relinking mod folder")
	if err := r.linker.Relink(old, want, l.ModfilesDir); err != nil {
		return "", err
	}
	return want, nil
}

// updateWorkspaceFile rewrites every "<mod>_<version>" in the configured
// editor workspace file to v. It is a no-op when no file is configured.
func (r *Runner) updateWorkspaceFile(v version.Version) (bool, error) {
	path := r.Layout.WorkspaceFile
	if path == "" {
		return false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading workspace file: %w", err)
	}

	pattern := regexp.MustCompile(regexp.QuoteMeta(r.Layout.Mod) + `_\d+(?:\.\d+)*\b`)
	updated := pattern.ReplaceAllLiteral(data, []byte(r.Layout.VersionedName(v)))
	if string(updated) == string(data) {
		return false, nil
	}

	if err := fileutil.WriteAtomic(path, updated); err != nil {
		return false, fmt.Errorf("writing workspace file: %w", err)
	}
	return true, nil
}
