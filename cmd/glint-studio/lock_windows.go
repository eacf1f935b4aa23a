//go:build windows

package main

import (
	"syscall"

	"github.com/dixieflatline76/Glint/config"
	"github.com/dixieflatline76/Glint/util/log"
	"golang.org/x/sys/windows"
)

var mutex windows.Handle

// acquireLock creates a named mutex. It returns false when another studio
// owns it.
func acquireLock() (bool, error) {
	name, err := syscall.UTF16PtrFromString(config.AppName + "Studio_SingleInstanceMutex")
	if err != nil {
		return false, err
	}

	mutex, err = windows.CreateMutex(nil, false, name)
	if err != nil {
		if err == windows.ERROR_ALREADY_EXISTS {
			windows.CloseHandle(mutex)
			mutex = 0
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func releaseLock() {
	if mutex == 0 {
		return
	}
	if err := windows.ReleaseMutex(mutex); err != nil {
		log.Printf("Failed to release mutex: %v", err)
	}
	if err := windows.CloseHandle(mutex); err != nil {
		log.Printf("Failed to close mutex handle: %v", err)
	}
}
