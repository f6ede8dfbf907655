//go:build unix

package platform

import (
	"os/exec"
	"syscall"
)

// HideConsole is a no-op outside Windows.
func HideConsole(*exec.Cmd) {}

// Detach starts the child in its own process group so terminal signals sent
// to the launcher do not reach the game.
func Detach(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}
