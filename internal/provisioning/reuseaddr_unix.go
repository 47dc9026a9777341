//go:build unix

package provisioning

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseAddr lets a restarted portal bind while the old socket is in TIME_WAIT.
func reuseAddr(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
