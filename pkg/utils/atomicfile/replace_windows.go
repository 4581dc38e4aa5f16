//go:build windows
// +build windows

package atomicfile

import (
	"fmt"
	"time"

	"golang.org/x/sys/windows"
)

// Replace atomically replaces dest with source. Uses MoveFileEx with retry
// logic to handle Windows file locking (the shell may briefly hold icon
// files open while it re-reads them).
func Replace(sourcePath, destPath string) error {
	fromPtr, err := windows.UTF16PtrFromString(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to convert source path to UTF-16: %w", err)
	}
	toPtr, err := windows.UTF16PtrFromString(destPath)
	if err != nil {
		return fmt.Errorf("failed to convert dest path to UTF-16: %w", err)
	}

	var flags uint32 = windows.MOVEFILE_REPLACE_EXISTING | windows.MOVEFILE_WRITE_THROUGH

	// Retry with exponential backoff
	maxAttempts := 3
	delay := 50 * time.Millisecond

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = windows.MoveFileEx(fromPtr, toPtr, flags)
		if err == nil {
			return nil
		}
		if attempt == maxAttempts {
			return fmt.Errorf("failed after %d attempts (Windows file lock): %w", maxAttempts, err)
		}
		time.Sleep(delay)
		delay *= 2
	}
	return nil
}
