//go:build windows

package checks

import "os/exec"

// configureProcessGroup is a no-op on Windows; CommandContext's default
// Kill applies to the direct child only.
func configureProcessGroup(cmd *exec.Cmd) {}
