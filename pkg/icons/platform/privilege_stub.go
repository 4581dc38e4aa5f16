//go:build !windows

package platform

import (
	"fmt"
	"os"

	"github.com/iconify-go/iconify/pkg/icons/errors"
)

func IsElevated() bool {
	return os.Geteuid() == 0
}

func relaunchElevated([]string) error {
	return fmt.Errorf("%w: elevation prompt not available on this platform", errors.ErrInsufficientPrivilege)
}
