//go:build !linux

package device

import (
	"context"
	"fmt"
	"io"
)

// RFCOMMDialer is only implemented for Linux Bluetooth sockets. Other
// platforms get a dialer that always fails, so the simulator remains
// usable everywhere.
func RFCOMMDialer() Dialer {
	return func(ctx context.Context, address string) (io.ReadWriteCloser, error) {
		return nil, fmt.Errorf("device: rfcomm is only supported on linux")
	}
}
