//go:build !windows

package platform

// File attributes are a Windows shell concept; elsewhere the artifacts are
// regular files and these are no-ops.

func setHiddenSystem(string) error { return nil }

func setSystem(string) error { return nil }

func clearAttributes(string) error { return nil }
