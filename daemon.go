package main

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

const envDaemonized = "BOARDD_DAEMONIZED"

func isDaemonized() bool {
	return os.Getenv(envDaemonized) != ""
}

// daemonize starts this program again in a new session and returns once it
// is running. Go cannot fork, so the child is a fresh exec with the same
// arguments. Standard streams are kept.
func daemonize() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), envDaemonized+"=1")
	cmd.Stdin = nil
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("daemonize: %w", err)
	}
	return cmd.Process.Release()
}

// dropPrivileges switches to the configured group and user. It does nothing
// unless running as root with a target uid.
func dropPrivileges(uid, gid int) error {
	if uid <= 0 || unix.Geteuid() != 0 {
		return nil
	}
	if gid > 0 {
		if err := unix.Setgid(gid); err != nil {
			return fmt.Errorf("setgid %d: %w", gid, err)
		}
	}
	if err := unix.Setuid(uid); err != nil {
		return fmt.Errorf("setuid %d: %w", uid, err)
	}
	return nil
}
