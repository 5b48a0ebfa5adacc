package fileops

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestEnsureDirsAndListFiles(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	if err := EnsureDirs(in, filepath.Join(root, "out", "nested")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	writeFile(t, filepath.Join(in, "b.docx"), "b")
	writeFile(t, filepath.Join(in, "a.docx"), "a")
	if err := os.Mkdir(filepath.Join(in, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := ListFiles(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %v", len(files), files)
	}
	if filepath.Base(files[0]) != "a.docx" {
		t.Errorf("expected sorted listing, got %v", files)
	}
}

func TestListFiles_FollowsSymlinks(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	if err := EnsureDirs(in, filepath.Join(root, "elsewhere")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	target := filepath.Join(root, "elsewhere", "real.md")
	writeFile(t, target, "# 总论")

	links := map[string]string{
		"link.md":     target,
		"dir-link":    filepath.Join(root, "elsewhere"),
		"dangling.md": filepath.Join(root, "missing.md"),
	}
	for name, to := range links {
		if err := os.Symlink(to, filepath.Join(in, name)); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}
	}

	files, err := ListFiles(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "link.md" {
		t.Fatalf("expected only link.md, got %v", files)
	}
}

func TestListFiles_MissingDir(t *testing.T) {
	_, err := ListFiles(filepath.Join(t.TempDir(), "nope"))
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %v", err)
	}
}

func TestCopyAndMove(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.docx")
	writeFile(t, src, "payload")

	dst := filepath.Join(dir, "copy.docx")
	writeFile(t, dst, "old content that is longer")
	if err := Copy(src, dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := readFile(t, dst); got != "payload" {
		t.Errorf("expected %q, got %q", "payload", got)
	}

	moved := filepath.Join(dir, "moved.docx")
	if err := Move(src, moved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Exists(src) {
		t.Error("expected source to be gone after move")
	}
	if got := readFile(t, moved); got != "payload" {
		t.Errorf("expected %q, got %q", "payload", got)
	}
}

func TestMove_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := Move(filepath.Join(dir, "nope"), filepath.Join(dir, "dst"))
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %v", err)
	}
}

func TestReplace(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a.docx")
	tmp := target + ".tmp"
	writeFile(t, target, "original")
	writeFile(t, tmp, "trimmed")

	if err := Replace(tmp, target); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := readFile(t, target); got != "trimmed" {
		t.Errorf("expected %q, got %q", "trimmed", got)
	}
	if Exists(tmp) {
		t.Error("expected temp file to be renamed away")
	}

	// Target absent is fine too.
	writeFile(t, tmp, "again")
	if err := os.Remove(target); err != nil {
		t.Fatal(err)
	}
	if err := Replace(tmp, target); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	if err := RemoveIfExists(filepath.Join(dir, "missing")); err != nil {
		t.Errorf("expected nil for missing file, got %v", err)
	}
	p := filepath.Join(dir, "f")
	writeFile(t, p, "x")
	if err := RemoveIfExists(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Exists(p) {
		t.Error("expected file removed")
	}
}
