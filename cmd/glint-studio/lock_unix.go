//go:build !windows

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/dixieflatline76/Glint/config"
)

var lockFile *os.File

// acquireLock takes an exclusive lock on a file in the temp directory. It
// returns false when another studio holds it.
func acquireLock() (bool, error) {
	path := filepath.Join(os.TempDir(), config.AppName+"Studio.lock")
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return false, fmt.Errorf("opening lock file: %w", err)
	}

	err = syscall.FcntlFlock(file.Fd(), syscall.F_SETLK, &syscall.Flock_t{
		Type:   syscall.F_WRLCK,
		Whence: 0,
		Start:  0,
		Len:    0, // whole file
	})
	if err != nil {
		file.Close()
		if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EACCES) {
			return false, nil
		}
		return false, fmt.Errorf("locking %s: %w", path, err)
	}

	lockFile = file
	return true, nil
}

func releaseLock() {
	if lockFile == nil {
		return
	}
	syscall.FcntlFlock(lockFile.Fd(), syscall.F_SETLK, &syscall.Flock_t{Type: syscall.F_UNLCK})
	lockFile.Close()
	os.Remove(lockFile.Name())
}
