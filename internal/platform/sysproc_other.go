//go:build !unix && !windows

package platform

import "os/exec"

func HideConsole(*exec.Cmd) {}

func Detach(*exec.Cmd) {}
