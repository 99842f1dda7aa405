// Advisory locking stub for platforms without flock(2).

//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package fileio

import "os"

func lockFile(f *os.File) error { return nil }

func unlockFile(f *os.File) error { return nil }
