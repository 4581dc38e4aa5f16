//go:build windows

package platform

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"

	"github.com/iconify-go/iconify/pkg/icons/errors"
	"github.com/iconify-go/iconify/pkg/utils/winargs"
)

// IsElevated reports whether the current process token carries admin
// rights (UAC-elevated or run as administrator).
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

// relaunchElevated re-executes the current binary through the UAC prompt.
// A declined prompt surfaces as ErrInsufficientPrivilege.
func relaunchElevated(args []string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating executable: %w", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}

	verbPtr, err := windows.UTF16PtrFromString("runas")
	if err != nil {
		return err
	}
	exePtr, err := windows.UTF16PtrFromString(exe)
	if err != nil {
		return err
	}
	argPtr, err := windows.UTF16PtrFromString(winargs.Join(args))
	if err != nil {
		return err
	}
	var cwdPtr *uint16
	if cwd != "" {
		if cwdPtr, err = windows.UTF16PtrFromString(cwd); err != nil {
			return err
		}
	}

	err = windows.ShellExecute(0, verbPtr, exePtr, argPtr, cwdPtr, windows.SW_NORMAL)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInsufficientPrivilege, err)
	}
	return nil
}
