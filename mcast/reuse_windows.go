//go:build windows

package mcast

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// setReuseAddr enables SO_REUSEADDR on the socket behind rc. Windows has
// no SO_REUSEPORT equivalent; SO_REUSEADDR alone is sufficient to let
// multiple role instances co-bind a multicast port.
func setReuseAddr(rc syscall.RawConn) error {
	var sockErr error
	err := rc.Control(func(fd uintptr) {
		sockErr = windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
