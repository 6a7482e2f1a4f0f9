// Package protocol decodes the Unicorn headset's Bluetooth RFCOMM payload
// format. Reference: Unicorn Bluetooth Protocol document, g.tec.
package protocol

import (
	"encoding/binary"
	"fmt"
)

const (
	// Port is the RFCOMM channel the device listens on.
	Port = 1

	// FS is the device sample rate in Hz.
	FS = 250.0

	// PayloadLength is the size of one sample payload in bytes.
	PayloadLength = 45

	EEGChannels       = 8
	bytesPerEEG       = 3 // 24-bit signed, big-endian
	AccChannels       = 3 // X, Y, Z
	bytesPerAcc       = 2 // 16-bit signed, little-endian
	GyrChannels       = 3 // yaw, pitch, roll
	bytesPerGyr       = 2 // 16-bit signed, little-endian
	headerOffset      = 0
	headerLength      = 2
	batteryOffset     = headerOffset + headerLength
	batteryLength     = 1
	eegOffset         = batteryOffset + batteryLength
	eegLength         = EEGChannels * bytesPerEEG
	accOffset         = eegOffset + eegLength
	accLength         = AccChannels * bytesPerAcc
	gyrOffset         = accOffset + accLength
	gyrLength         = GyrChannels * bytesPerGyr
	counterOffset     = gyrOffset + gyrLength
	counterLength     = 4
	footerOffset      = counterOffset + counterLength
	footerLength      = 2
	computedPayloadSz = footerOffset + footerLength
)

// Layout must add up to the wire payload size.
const _ = -uint(PayloadLength - computedPayloadSz)

// Calibration factors converting ADC units to physical units.
const (
	EEGScale = 4500000.0 / 50331642.0 // µV per ADC unit
	AccScale = 1.0 / 4096.0           // g per ADC unit
	GyrScale = 1.0 / 32.8             // deg/sec per ADC unit
)

var (
	// StartMsg begins streaming when written to the device.
	StartMsg = []byte{0x61, 0x7C, 0x87}
	// StopMsg ends streaming.
	StopMsg = []byte{0x63, 0x5C, 0xC5}
)

// Frame is one decoded sample: EEG in µV, accelerometer in g, gyroscope in
// deg/sec, battery as a 0–1 fraction, and the device's monotonically
// increasing packet counter.
type Frame struct {
	EEG     [EEGChannels]float64
	Acc     [AccChannels]float64
	Gyr     [GyrChannels]float64
	Battery float64
	Counter uint32
}

// Time returns the device timestamp of the frame in seconds, derived from
// the packet counter and the fixed sample rate.
func (f Frame) Time() float64 {
	return float64(f.Counter) / FS
}

// Decode parses a block of concatenated payloads. The block length must be
// a whole multiple of PayloadLength.
func Decode(data []byte) ([]Frame, error) {
	if len(data)%PayloadLength != 0 {
		return nil, fmt.Errorf("protocol: block length %d is not a multiple of %d", len(data), PayloadLength)
	}

	frames := make([]Frame, len(data)/PayloadLength)
	for i := range frames {
		decodeFrame(data[i*PayloadLength:(i+1)*PayloadLength], &frames[i])
	}
	return frames, nil
}

func decodeFrame(p []byte, f *Frame) {
	f.Battery = float64(p[batteryOffset]&0x0F) / 15.0

	for ch := 0; ch < EEGChannels; ch++ {
		off := eegOffset + ch*bytesPerEEG
		raw := int32(p[off])<<16 | int32(p[off+1])<<8 | int32(p[off+2])
		if raw&0x800000 != 0 {
			raw -= 1 << 24
		}
		f.EEG[ch] = float64(raw) * EEGScale
	}

	for ch := 0; ch < AccChannels; ch++ {
		off := accOffset + ch*bytesPerAcc
		raw := int16(binary.LittleEndian.Uint16(p[off:]))
		f.Acc[ch] = float64(raw) * AccScale
	}

	for ch := 0; ch < GyrChannels; ch++ {
		off := gyrOffset + ch*bytesPerGyr
		raw := int16(binary.LittleEndian.Uint16(p[off:]))
		f.Gyr[ch] = float64(raw) * GyrScale
	}

	f.Counter = binary.LittleEndian.Uint32(p[counterOffset:])
}
