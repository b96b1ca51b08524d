package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}

	got, err := ExpandPath("~/videos")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	want := filepath.Join(home, "videos")
	if got != want {
		t.Fatalf("ExpandPath(~/videos) = %q, want %q", got, want)
	}
}

func TestExpandPathRelative(t *testing.T) {
	got, err := ExpandPath("movies/../movies")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Fatalf("expected absolute path, got %q", got)
	}
	if !strings.HasSuffix(got, string(filepath.Separator)+"movies") {
		t.Fatalf("expected cleaned path ending in /movies, got %q", got)
	}
}

func TestExpandPathEmpty(t *testing.T) {
	if _, err := ExpandPath("   "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s, err=%v", dir, err)
	}
	// Idempotent on existing directories.
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir twice: %v", err)
	}
}

func TestFileSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.bin")
	if err := os.WriteFile(path, make([]byte, 42), 0o644); err != nil {
		t.Fatal(err)
	}
	size, err := FileSize(path)
	if err != nil {
		t.Fatalf("FileSize: %v", err)
	}
	if size != 42 {
		t.Fatalf("FileSize = %d, want 42", size)
	}

	if _, err := FileSize(filepath.Dir(path)); err == nil {
		t.Fatal("expected error for directory")
	}
}
