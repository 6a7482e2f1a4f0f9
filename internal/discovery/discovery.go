// Package discovery finds nearby Unicorn headsets by driving a
// bluetoothctl scan and parsing its discovery lines.
package discovery

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// DefaultScanWindow is how long a scan listens for advertisements.
const DefaultScanWindow = 10 * time.Second

// NamePrefix identifies Unicorn headsets in scan results.
const NamePrefix = "UN-"

// Device is one discovered Bluetooth device.
type Device struct {
	Address string
	Name    string
}

// IsUnicorn reports whether the device advertises a Unicorn name.
func (d Device) IsUnicorn() bool {
	return strings.HasPrefix(d.Name, NamePrefix)
}

var (
	ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m|\x01|\x02`)
	newDevice  = regexp.MustCompile(`\[NEW\] Device ((?:[0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}) (.+)`)
)

// ParseLine extracts a device from one line of bluetoothctl output.
// Lines that are not [NEW] Device announcements return ok=false.
func ParseLine(line string) (Device, bool) {
	clean := ansiEscape.ReplaceAllString(line, "")
	m := newDevice.FindStringSubmatch(clean)
	if m == nil {
		return Device{}, false
	}
	return Device{
		Address: strings.ToUpper(m[1]),
		Name:    strings.TrimSpace(m[2]),
	}, true
}

// Scan runs bluetoothctl for the window and returns the devices it
// announced, deduplicated by address. A zero window means
// DefaultScanWindow.
func Scan(ctx context.Context, window time.Duration, log *slog.Logger) ([]Device, error) {
	if window <= 0 {
		window = DefaultScanWindow
	}
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithTimeout(ctx, window+2*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "bluetoothctl")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("discovery: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("discovery: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("discovery: start bluetoothctl: %w", err)
	}

	go func() {
		io.WriteString(stdin, "scan on\n")
		select {
		case <-time.After(window):
		case <-ctx.Done():
		}
		io.WriteString(stdin, "scan off\n")
		io.WriteString(stdin, "exit\n")
		stdin.Close()
	}()

	devices := collect(stdout, log)
	if err := cmd.Wait(); err != nil && ctx.Err() == nil {
		return devices, fmt.Errorf("discovery: bluetoothctl: %w", err)
	}
	return devices, nil
}

// collect parses announcements until the stream ends.
func collect(r io.Reader, log *slog.Logger) []Device {
	var devices []Device
	seen := make(map[string]bool)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		d, ok := ParseLine(sc.Text())
		if !ok || seen[d.Address] {
			continue
		}
		seen[d.Address] = true
		devices = append(devices, d)
		log.Info("discovered device", "address", d.Address, "name", d.Name)
	}
	return devices
}

// Unicorns filters a scan result down to Unicorn headsets.
func Unicorns(devices []Device) []Device {
	var out []Device
	for _, d := range devices {
		if d.IsUnicorn() {
			out = append(out, d)
		}
	}
	return out
}
