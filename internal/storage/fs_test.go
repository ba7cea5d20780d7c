package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestFS(t *testing.T) (string, *FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

func TestWriteAndRead(t *testing.T) {
	_, store := newTestFS(t)

	content := []byte("---\ntitle: A\n---\nbody\n")
	if err := store.Write("notes/a.md", content); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := store.Read("notes/a.md")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("read = %q, want %q", got, content)
	}
}

func TestWrite_LeavesNoTempFiles(t *testing.T) {
	dir, store := newTestFS(t)

	if err := store.Write("a.md", []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "a.md" {
			t.Errorf("unexpected file after write: %s", e.Name())
		}
	}
}

func TestList_OnlyMarkdown(t *testing.T) {
	dir, store := newTestFS(t)

	if err := store.Write("a.md", []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("sub/b.md", []byte("two")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("not a note"), 0o644); err != nil {
		t.Fatal(err)
	}

	metas, err := store.List("")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("len(metas) = %d, want 2", len(metas))
	}
	paths := map[string]bool{}
	for _, m := range metas {
		paths[m.Path] = true
		if m.Checksum == "" {
			t.Errorf("empty checksum for %s", m.Path)
		}
	}
	if !paths["a.md"] || !paths[filepath.Join("sub", "b.md")] {
		t.Errorf("paths = %v", paths)
	}
}

func TestSafePath_RejectsTraversal(t *testing.T) {
	_, store := newTestFS(t)

	if _, err := store.Read("../escape.md"); err == nil {
		t.Error("expected error for path traversal")
	}
	if err := store.Write("../../etc/evil.md", []byte("x")); err == nil {
		t.Error("expected error for path traversal on write")
	}
	if _, err := store.Read("/etc/passwd"); err == nil {
		t.Error("expected error for absolute path")
	}
}

func TestDelete(t *testing.T) {
	_, store := newTestFS(t)

	if err := store.Write("a.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("a.md"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Read("a.md"); err == nil {
		t.Error("expected read error after delete")
	}
}

func TestIsNote(t *testing.T) {
	dir, store := newTestFS(t)

	if err := store.Write("a.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "folder.md"), 0o755); err != nil {
		t.Fatal(err)
	}

	if !store.IsNote("a.md") {
		t.Error("a.md should be a note")
	}
	if store.IsNote("missing.md") {
		t.Error("missing.md should not be a note")
	}
	if store.IsNote("folder.md") {
		t.Error("a directory should not be a note")
	}
	if store.IsNote("a.txt") {
		t.Error("non-md path should not be a note")
	}
}
