package fileops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// IOError reports a failed filesystem operation.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// EnsureDirs creates every directory that does not exist yet.
func EnsureDirs(dirs ...string) error {
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return &IOError{Op: "mkdir", Path: d, Err: err}
		}
	}
	return nil
}

// ListFiles returns the regular files directly inside dir, sorted by name.
// Symlinks are followed; a link to a regular file is listed under its own
// name, and dangling links are skipped.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &IOError{Op: "readdir", Path: dir, Err: err}
	}
	var files []string
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.Type()&os.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		} else if !e.Type().IsRegular() {
			continue
		}
		files = append(files, path)
	}
	return files, nil
}

// Copy copies src to dst, overwriting dst and preserving the mode and
// modification time of src.
func Copy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return &IOError{Op: "copy", Path: src, Err: err}
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return &IOError{Op: "copy", Path: src, Err: err}
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return &IOError{Op: "copy", Path: dst, Err: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return &IOError{Op: "copy", Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		return &IOError{Op: "copy", Path: dst, Err: err}
	}
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	return nil
}

// Move moves src to dst, replacing dst. It falls back to copy-then-delete
// when a rename is not possible, e.g. across filesystems.
func Move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := Copy(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return &IOError{Op: "move", Path: src, Err: err}
	}
	return nil
}

// Replace puts tmp in place of target, removing target first if present.
func Replace(tmp, target string) error {
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &IOError{Op: "replace", Path: target, Err: err}
	}
	if err := os.Rename(tmp, target); err != nil {
		return &IOError{Op: "replace", Path: tmp, Err: err}
	}
	return nil
}

// MakeWritable clears read-only bits on path.
func MakeWritable(path string) error {
	if err := os.Chmod(path, 0o666); err != nil {
		return &IOError{Op: "chmod", Path: path, Err: err}
	}
	return nil
}

// RemoveIfExists deletes path, ignoring a missing file.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &IOError{Op: "remove", Path: path, Err: err}
	}
	return nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
