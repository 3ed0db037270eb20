// Package archive builds release zips and unpacks game archives.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// UnsafePathError is returned by Extract for entries that would land
// outside the destination directory.
type UnsafePathError struct {
	Name string
}

func (e *UnsafePathError) Error() string {
	return fmt.Sprintf("archive entry %q escapes the destination directory", e.Name)
}

// Archiver creates and extracts zip archives.
type Archiver interface {
	Create(srcDir, rootName, dest string, extras map[string]string) error
	Extract(zipPath, destDir string) ([]string, error)
}

// Zip is the Archiver backed by archive/zip.
type Zip struct{}

// New returns a Zip archiver.
func New() *Zip {
	return &Zip{}
}

// Create writes dest containing every file below srcDir, stored under
// rootName/. extras maps archive-relative names to source files that are
// added under rootName/ as well; the source tree is not modified.
func (Zip) Create(srcDir, rootName, dest string, extras map[string]string) (err error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
	}

	absDest, err := filepath.Abs(dest)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", dest, err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing archive: %w", cerr)
		}
		if err != nil {
			os.Remove(dest)
		}
	}()

	zw := zip.NewWriter(f)

	if _, err := zw.Create(rootName + "/"); err != nil {
		return fmt.Errorf("writing root entry: %w", err)
	}

	err = filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == srcDir {
			return nil
		}
		if abs, _ := filepath.Abs(p); abs == absDest {
			return nil
		}

		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		name := path.Join(rootName, filepath.ToSlash(rel))

		if d.IsDir() {
			_, err := zw.Create(name + "/")
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := extras[filepath.ToSlash(rel)]; ok {
			return nil
		}
		return addFile(zw, p, name)
	})
	if err != nil {
		return fmt.Errorf("adding %s: %w", srcDir, err)
	}

	names := make([]string, 0, len(extras))
	for name := range extras {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := addFile(zw, extras[name], path.Join(rootName, name)); err != nil {
			return fmt.Errorf("adding %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing archive: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, src, name string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}

// Extract unpacks zipPath into destDir and returns the sorted top-level
// names it created. Entries that would escape destDir abort the extraction.
func (Zip) Extract(zipPath, destDir string) ([]string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil && !(errors.Is(err, zip.ErrInsecurePath) && zr != nil) {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer zr.Close()

	destAbs, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", destDir, err)
	}

	// Validate every entry before writing anything.
	for _, f := range zr.File {
		if _, err := safeJoin(destAbs, f.Name); err != nil {
			return nil, err
		}
	}

	top := make(map[string]bool)
	for _, f := range zr.File {
		target, _ := safeJoin(destAbs, f.Name)
		top[strings.SplitN(path.Clean(strings.TrimPrefix(f.Name, "/")), "/", 2)[0]] = true

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, fmt.Errorf("creating %s: %w", target, err)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return nil, fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}

	names := make([]string, 0, len(top))
	for name := range top {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func safeJoin(destAbs, name string) (string, error) {
	target := filepath.Join(destAbs, filepath.FromSlash(name))
	rel, err := filepath.Rel(destAbs, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(name) {
		return "", &UnsafePathError{Name: name}
	}
	return target, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
