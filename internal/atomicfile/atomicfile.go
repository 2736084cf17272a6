// Package atomicfile replaces files through a temporary sibling so readers
// never observe a half-written CSV.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// rename is swapped in tests to simulate filesystems without atomic rename.
var rename = os.Rename

// WriteFile writes data to a temporary file in the destination directory
// and renames it over path. When the rename fails the destination is
// overwritten in place instead.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod temp file %s: %w", tmpName, err)
	}

	if err := rename(tmpName, path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("write file %s: %w", path, err)
	}
	return nil
}
