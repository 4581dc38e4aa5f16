//go:build !windows

package platform

// Drive icon registry persistence only exists on Windows.
func persistDriveIcon(string, string, bool) ([]string, error) {
	return nil, nil
}

// No machine hive to write; the filesystem probe alone decides.
func canWriteMachineHive() bool { return true }
