//go:build linux

package device

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"

	"unicorn-orientviz/internal/protocol"
)

// RFCOMMDialer opens a Bluetooth RFCOMM socket to the device on the
// protocol channel.
func RFCOMMDialer() Dialer {
	return func(ctx context.Context, address string) (io.ReadWriteCloser, error) {
		addr, err := ParseBTAddr(address)
		if err != nil {
			return nil, err
		}

		fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM, unix.BTPROTO_RFCOMM)
		if err != nil {
			return nil, fmt.Errorf("device: rfcomm socket: %w", err)
		}
		sa := &unix.SockaddrRFCOMM{Addr: addr, Channel: protocol.Port}
		if err := unix.Connect(fd, sa); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("device: connect %s: %w", address, err)
		}
		return os.NewFile(uintptr(fd), "rfcomm:"+address), nil
	}
}
