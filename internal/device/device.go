// Package device streams decoded sample blocks from a Unicorn headset.
//
// RFCOMM has no portable API in the standard library and the usable
// bindings differ per platform, so the transport is an injected Dialer.
// Everything above the dial lives here: start/stop framing, fixed-size
// block reads, decoding and reconnects.
package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"unicorn-orientviz/internal/protocol"
)

// SimulatorAddress selects the synthetic source instead of a real device.
const SimulatorAddress = "simulator"

// Settings configure a device connection.
type Settings struct {
	// Address of the device, "XX:XX:XX:XX:XX:XX". Empty means no device.
	Address string
	// NSamp is the number of frames read per block.
	NSamp int
	// RetryInterval is the pause between failed connection attempts.
	RetryInterval time.Duration
}

// DefaultSettings mirrors the device defaults: 50 frames per block, one
// reconnect attempt per minute.
func DefaultSettings(address string) Settings {
	return Settings{
		Address:       address,
		NSamp:         50,
		RetryInterval: time.Minute,
	}
}

// Source is a stream of decoded sample blocks. Both the real connection
// and the simulator satisfy it.
type Source interface {
	// Blocks delivers decoded frames until Run returns.
	Blocks() <-chan []protocol.Frame
	// Run drives the source until the context is canceled.
	Run(ctx context.Context) error
}

// Dialer opens a stream transport to the device address.
type Dialer func(ctx context.Context, address string) (io.ReadWriteCloser, error)

// ParseBTAddr converts "XX:XX:XX:XX:XX:XX" to the 6 byte socket form.
// Bluetooth sockets take the address bytes in reverse order.
func ParseBTAddr(address string) ([6]byte, error) {
	var out [6]byte
	parts := strings.Split(address, ":")
	if len(parts) != 6 {
		return out, fmt.Errorf("device: bad address %q", address)
	}
	for i, p := range parts {
		b, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return out, fmt.Errorf("device: bad address %q: %w", address, err)
		}
		out[5-i] = byte(b)
	}
	return out, nil
}

// Connection reads fixed-size payload blocks from a dialed stream.
type Connection struct {
	settings Settings
	dial     Dialer
	blocks   chan []protocol.Frame
	log      *slog.Logger
}

// NewConnection wires a connection; Run must be called to start it.
func NewConnection(s Settings, dial Dialer, log *slog.Logger) (*Connection, error) {
	if s.Address == "" || s.Address == SimulatorAddress {
		return nil, fmt.Errorf("device: no device address configured")
	}
	if s.NSamp <= 0 {
		return nil, fmt.Errorf("device: n_samp must be positive, got %d", s.NSamp)
	}
	if dial == nil {
		return nil, fmt.Errorf("device: nil dialer")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Connection{
		settings: s,
		dial:     dial,
		blocks:   make(chan []protocol.Frame, 1),
		log:      log,
	}, nil
}

// Blocks implements Source.
func (c *Connection) Blocks() <-chan []protocol.Frame {
	return c.blocks
}

// Run dials, streams and reconnects until the context is canceled.
func (c *Connection) Run(ctx context.Context) error {
	defer close(c.blocks)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, err := c.dial(ctx, c.settings.Address)
		if err != nil {
			c.log.Warn("could not open connection",
				"address", c.settings.Address, "err", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.settings.RetryInterval):
				continue
			}
		}

		err = c.stream(ctx, conn)
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("device stream ended, reconnecting", "err", err)
	}
}

// stream runs one connected session: START, fixed-size reads, STOP.
func (c *Connection) stream(ctx context.Context, conn io.ReadWriteCloser) error {
	defer conn.Close()

	// Close the transport when the context dies so blocked reads abort.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Write(protocol.StopMsg)
			conn.Close()
		case <-done:
		}
	}()

	if _, err := conn.Write(protocol.StartMsg); err != nil {
		return fmt.Errorf("device: start stream: %w", err)
	}
	c.log.Info("streaming", "address", c.settings.Address, "n_samp", c.settings.NSamp)

	readLength := protocol.PayloadLength * c.settings.NSamp
	buf := make([]byte, readLength)
	for {
		if _, err := io.ReadFull(conn, buf); err != nil {
			return fmt.Errorf("device: read block: %w", err)
		}
		frames, err := protocol.Decode(buf)
		if err != nil {
			return err
		}
		select {
		case c.blocks <- frames:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
