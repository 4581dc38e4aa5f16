//go:build !windows

package platform

import "github.com/hashicorp/go-hclog"

func refreshShellCache(log hclog.Logger, opts RefreshOptions) error {
	log.Debug("No shell icon cache on this platform")
	return nil
}
