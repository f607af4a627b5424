//go:build linux || darwin

package mcast

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// setReuseAddr enables SO_REUSEADDR (and SO_REUSEPORT where available) on
// the socket behind rc, so multiple processes of the same role can bind
// the same multicast group port on one host.
func setReuseAddr(rc syscall.RawConn) error {
	var sockErr error
	err := rc.Control(func(fd uintptr) {
		if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
			sockErr = err
			return
		}
		// Best-effort: not all unix variants expose SO_REUSEPORT.
		_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
