package platform

import "github.com/hashicorp/go-hclog"

// RefreshOptions tunes how aggressively the shell icon cache is refreshed.
type RefreshOptions struct {
	// Force restarts the shell process after purging caches. Without it
	// the refresh is limited to cache deletion plus a change notification.
	Force bool
}

// Refresh nudges the shell into re-reading icon sources. Every step is
// best effort: caches that do not exist or cannot be removed are skipped,
// and the call only reports what it managed to do.
func Refresh(logger hclog.Logger, opts RefreshOptions) error {
	log := logger.Named("refresh")
	log.Info("🔄 Refreshing shell icon cache", "force", opts.Force)
	return refreshShellCache(log, opts)
}
