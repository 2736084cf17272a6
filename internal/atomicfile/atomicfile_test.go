package atomicfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFile_ReplacesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2025", "gas_factors.csv")

	if err := WriteFile(path, []byte("old\n"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteFile(path, []byte("new\n"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(content) != "new\n" {
		t.Fatalf("unexpected content: %q", string(content))
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no leftover temp files, got %d entries", len(entries))
	}
}

func TestWriteFile_FallsBackWhenRenameFails(t *testing.T) {
	original := rename
	rename = func(string, string) error { return errors.New("cross-device link") }
	t.Cleanup(func() { rename = original })

	path := filepath.Join(t.TempDir(), "cups_centers.csv")
	if err := WriteFile(path, []byte("id,cups\n"), 0o644); err != nil {
		t.Fatalf("write with fallback: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(content) != "id,cups\n" {
		t.Fatalf("unexpected content: %q", string(content))
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".*.tmp"))
	if len(matches) != 0 {
		t.Fatalf("expected temp file cleanup, found %v", matches)
	}
}
