// Package ioutilx provides the atomic file write the driver uses for every
// artifact it produces (§4.7 "write to a sibling temporary, flush-close,
// rename over the destination"). The compiler package writes output files
// directly with os.Create; this package exists because the driver's
// outputs must never leave a half-written file behind on a crash or a
// concurrent reader.
package ioutilx

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteAtomic creates any missing parent directories, writes data to a
// sibling temporary file named "<path>.tmp.<pid>", flushes and closes it,
// then renames it over path. On any failure the temporary file is removed
// and path is left untouched.
func WriteAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ioutilx: creating parent directory %s: %w", dir, err)
	}

	tmpPath := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("ioutilx: creating temporary file %s: %w", tmpPath, err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	if _, werr := f.Write(data); werr != nil {
		f.Close()
		return fmt.Errorf("ioutilx: writing %s: %w", tmpPath, werr)
	}
	if cerr := f.Close(); cerr != nil {
		return fmt.Errorf("ioutilx: closing %s: %w", tmpPath, cerr)
	}
	if rerr := os.Rename(tmpPath, path); rerr != nil {
		return fmt.Errorf("ioutilx: renaming %s to %s: %w", tmpPath, path, rerr)
	}
	return nil
}
