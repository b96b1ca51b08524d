package testsupport

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path (and any missing parent directories) with size bytes
// of filler content. A size <= 0 still produces a non-empty file so callers
// can stat it.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	filler := bytes.Repeat([]byte{'x'}, 32*1024)
	if _, err := io.CopyN(f, repeatReader{filler}, size); err != nil {
		t.Fatalf("fill %s: %v", path, err)
	}
}

// repeatReader yields its pattern indefinitely.
type repeatReader struct {
	pattern []byte
}

func (r repeatReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		n += copy(p[n:], r.pattern)
	}
	return n, nil
}
