package platform

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// NeedsElevation reports whether applying to target requires rights the
// process does not have: an existing target that fails the non-destructive
// write probe needs elevation, and a drive target additionally needs write
// access to the machine-wide registry hive. A missing target is not a
// privilege problem; Apply reports it.
func NeedsElevation(target Target) bool {
	if info, err := os.Stat(target.Path); err == nil && info.IsDir() {
		if err := probeWritable(target.Path); err != nil {
			return true
		}
	}
	if target.Kind == TargetDrive && !canWriteMachineHive() {
		return true
	}
	return false
}

// EnsureElevated checks whether the process can perform machine-wide
// persistence and, if not, relaunches itself through the platform's
// elevation prompt with the same arguments. It returns true when the
// caller should exit because an elevated copy has taken over.
func EnsureElevated(logger hclog.Logger, args []string) (relaunched bool, err error) {
	log := logger.Named("privilege")
	if IsElevated() {
		log.Debug("Process already elevated")
		return false, nil
	}
	log.Info("🔒 Requesting elevation", "args", len(args))
	if err := relaunchElevated(args); err != nil {
		return false, err
	}
	return true, nil
}
