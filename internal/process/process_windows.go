//go:build windows

// Package process manages the process groups of exporter subprocesses so
// that a cancelled build also stops everything the exporter spawned.
package process

import (
	"os/exec"
	"strconv"
	"syscall"
)

// Isolate starts cmd in a new process group.
func Isolate(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.CreationFlags |= syscall.CREATE_NEW_PROCESS_GROUP
}

// KillGroup terminates pid and its children with taskkill /T.
func KillGroup(pid int) error {
	if pid <= 0 {
		return nil
	}
	// /F = force, /T = tree
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
	return nil
}
