//go:build !unix

package provisioning

import "syscall"

func reuseAddr(network, address string, c syscall.RawConn) error {
	return nil
}
