//go:build windows

package platform

import (
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sys/windows"
)

const (
	shcneAssocChanged = 0x08000000
	shcnfIDList       = 0x0000
)

var (
	shell32          = windows.NewLazySystemDLL("shell32.dll")
	procShChangeNoti = shell32.NewProc("SHChangeNotify")
)

func refreshShellCache(log hclog.Logger, opts RefreshOptions) error {
	if opts.Force {
		// Explorer holds the cache files open; it has to go down before
		// they can be deleted, then come back up.
		if err := exec.Command("taskkill", "/f", "/im", "explorer.exe").Run(); err != nil {
			log.Warn("⚠️ Could not stop shell process", "error", err)
		}
		time.Sleep(500 * time.Millisecond)
	}

	purgeIconCaches(log)
	notifyAssocChanged()

	if opts.Force {
		if err := exec.Command("cmd", "/c", "start", "explorer.exe").Start(); err != nil {
			log.Warn("⚠️ Could not restart shell process", "error", err)
		}
		if err := exec.Command("ie4uinit.exe", "-show").Run(); err != nil {
			log.Debug("ie4uinit unavailable", "error", err)
		}
	}
	return nil
}

func purgeIconCaches(log hclog.Logger) {
	localAppData := os.Getenv("LOCALAPPDATA")
	if localAppData == "" {
		return
	}

	removed := 0
	if err := os.Remove(filepath.Join(localAppData, "IconCache.db")); err == nil {
		removed++
	}
	explorerDir := filepath.Join(localAppData, "Microsoft", "Windows", "Explorer")
	for _, pattern := range []string{"iconcache*", "thumbcache*"} {
		matches, _ := filepath.Glob(filepath.Join(explorerDir, pattern))
		for _, m := range matches {
			if err := os.Remove(m); err == nil {
				removed++
			}
		}
	}
	log.Debug("Purged icon cache files", "count", removed)
}

func notifyAssocChanged() {
	procShChangeNoti.Call(
		uintptr(shcneAssocChanged),
		uintptr(shcnfIDList),
		0,
		0,
	)
}
