//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package fileio

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes an exclusive flock, blocking until it is available.
func lockFile(f *os.File) error {
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX)
		if err != unix.EINTR {
			return err
		}
	}
}

func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
