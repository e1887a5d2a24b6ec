//go:build !windows

package player

import (
	"os/exec"
	"syscall"
)

// setupPlayerProcess puts the player in its own process group so terminal
// signals aimed at the TUI never reach it.
func setupPlayerProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}
