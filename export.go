package svcspec

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// Export writes the filesystem side of a bundle below root: directories, run
// scripts, down markers and active symlinks. Symlink targets are written as
// compiled, so they resolve once the tree is installed at /. Absent resources
// are removed. Commands are never run, and file owners are left to the
// installer.
func Export(bundle *Bundle, root string) error {
	if bundle == nil {
		return nil
	}

	at := func(p string) string {
		return filepath.Join(root, filepath.FromSlash(p))
	}

	for _, s := range bundle.Symlinks {
		if s.State == StateAbsent {
			if err := removeIfExists(at(s.Path)); err != nil {
				return fmt.Errorf("removing symlink %s: %w", s.Path, err)
			}
		}
	}

	for _, d := range bundle.Directories {
		switch d.State {
		case StatePresent:
			mode := d.Mode
			if mode == 0 {
				mode = DirMode
			}
			if err := os.MkdirAll(at(d.Path), mode); err != nil {
				return fmt.Errorf("creating service directory: %w", err)
			}
		case StateAbsent:
			if err := os.RemoveAll(at(d.Path)); err != nil {
				return fmt.Errorf("removing service directory: %w", err)
			}
		}
	}

	for _, f := range bundle.Files {
		if err := os.MkdirAll(filepath.Dir(at(f.Path)), DirMode); err != nil {
			return fmt.Errorf("creating directory for %s: %w", f.Path, err)
		}
		if err := renameio.WriteFile(at(f.Path), []byte(f.Content), f.Mode); err != nil {
			return fmt.Errorf("writing %s: %w", f.Path, err)
		}
	}

	for _, m := range bundle.Markers {
		switch m.State {
		case StatePresent:
			if err := renameio.WriteFile(at(m.Path), nil, FileMode); err != nil {
				return fmt.Errorf("writing marker %s: %w", m.Path, err)
			}
		case StateAbsent:
			if err := removeIfExists(at(m.Path)); err != nil {
				return fmt.Errorf("removing marker %s: %w", m.Path, err)
			}
		}
	}

	for _, s := range bundle.Symlinks {
		if s.State != StatePresent {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(at(s.Path)), DirMode); err != nil {
			return fmt.Errorf("creating directory for %s: %w", s.Path, err)
		}
		if err := renameio.Symlink(s.Target, at(s.Path)); err != nil {
			return fmt.Errorf("creating symlink %s: %w", s.Path, err)
		}
	}

	return Export(bundle.Log, root)
}

func removeIfExists(p string) error {
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
