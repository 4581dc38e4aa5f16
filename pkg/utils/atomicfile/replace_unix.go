//go:build !windows
// +build !windows

package atomicfile

import (
	"fmt"
	"os"
)

// Replace atomically replaces dest with source. os.Rename is already atomic
// on POSIX filesystems, so this is a simple wrapper.
func Replace(sourcePath, destPath string) error {
	if err := os.Rename(sourcePath, destPath); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
