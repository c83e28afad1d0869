//go:build !windows

package step

import (
	"os/exec"
	"syscall"
)

// setProcGroup configures cmd to run in its own process group and sets up
// Cancel/WaitDelay so that context cancellation terminates the entire group
// (including child processes like sleep, curl, etc.) rather than only the
// direct child.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		// Soft-terminate the whole process group (negative PID) first;
		// WaitDelay below is the hard-kill backstop if the group ignores it.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}

	// Grace period after the soft terminate before the group is forcibly
	// killed and its pipe file descriptors closed out from under it.
	cmd.WaitDelay = killGracePeriod
}
