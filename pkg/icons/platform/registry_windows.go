//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const driveIconsPath = `Software\Microsoft\Windows\CurrentVersion\Explorer\DriveIcons`

// canWriteMachineHive probes for write access to the HKLM DriveIcons key.
// CreateKey opens the key when it already exists; creating it is harmless,
// it is the shell's standard location.
func canWriteMachineHive() bool {
	k, _, err := registry.CreateKey(registry.LOCAL_MACHINE, driveIconsPath, registry.SET_VALUE)
	if err != nil {
		return false
	}
	k.Close()
	return true
}

// persistDriveIcon records icoPath as the DefaultIcon for the drive letter
// under HKCU, and additionally under HKLM when the process is elevated so
// the association survives for all users.
func persistDriveIcon(letter, icoPath string, elevated bool) ([]string, error) {
	if letter == "" {
		return nil, fmt.Errorf("no drive letter to persist")
	}
	subKey := fmt.Sprintf(`%s\%s\DefaultIcon`, driveIconsPath, letter)

	roots := []struct {
		key  registry.Key
		name string
	}{
		{registry.CURRENT_USER, "HKCU"},
	}
	if elevated {
		roots = append(roots, struct {
			key  registry.Key
			name string
		}{registry.LOCAL_MACHINE, "HKLM"})
	}

	var written []string
	for _, root := range roots {
		k, _, err := registry.CreateKey(root.key, subKey, registry.SET_VALUE)
		if err != nil {
			if len(written) > 0 {
				return written, nil
			}
			return nil, fmt.Errorf("creating %s\\%s: %w", root.name, subKey, err)
		}
		err = k.SetStringValue("", icoPath)
		k.Close()
		if err != nil {
			return written, fmt.Errorf("setting %s\\%s: %w", root.name, subKey, err)
		}
		written = append(written, root.name+`\`+subKey)
	}
	return written, nil
}
