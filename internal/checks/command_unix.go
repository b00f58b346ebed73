//go:build unix

package checks

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup puts the child in its own process group and
// replaces the default cancel behavior with a group-wide SIGKILL, so a
// timed-out check cannot leave grandchildren running.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
