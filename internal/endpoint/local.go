package endpoint

import (
	"fmt"
	"os"
	"path/filepath"
)

// openLocalReader opens an existing file for sequential reading.
func openLocalReader(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("endpoint: open %s: %w", path, err)
	}
	return f, nil
}

// openLocalWriter creates path (and its parent directory, mirroring
// internal/checkpoint.go's os.MkdirAll(filepath.Dir(...)) idiom),
// truncating any existing file.
func openLocalWriter(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("endpoint: create parent dir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("endpoint: create %s: %w", path, err)
	}
	return f, nil
}
