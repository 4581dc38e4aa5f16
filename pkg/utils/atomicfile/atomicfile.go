// Package atomicfile publishes files and directories by writing to a
// temporary location and renaming into place, so readers never observe a
// partially written artifact.
package atomicfile

import (
	"fmt"
	"os"
)

// ReplaceDir publishes a fully built directory at destPath. Any previous
// directory is removed first; the rename itself is atomic, so the only
// non-atomic window is between removal and rename of an already-complete
// tree.
func ReplaceDir(sourceDir, destDir string) error {
	if err := os.RemoveAll(destDir); err != nil {
		return fmt.Errorf("failed to remove previous directory: %w", err)
	}
	if err := os.Rename(sourceDir, destDir); err != nil {
		return fmt.Errorf("failed to publish directory: %w", err)
	}
	return nil
}
