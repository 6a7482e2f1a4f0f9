package protocol

import (
	"bytes"
	"math"
	"testing"
)

// Payload from the protocol document, section 1.5: Payload Conversion Example.
var examplePayload = []byte{
	0xC0, 0x00, 0x0F, 0x00, 0x9F, 0xAF, 0x00, 0x9F,
	0xD4, 0x00, 0xA0, 0x40, 0x00, 0x9F, 0x43, 0x00,
	0x9F, 0x9A, 0x00, 0x9F, 0xE3, 0x00, 0x9F, 0x85,
	0x00, 0x9F, 0xBB, 0x2E, 0xF6, 0xE9, 0x02, 0x8D,
	0xF2, 0xF3, 0xFF, 0xEF, 0xFF, 0x23, 0x00, 0xB0,
	0x00, 0x00, 0x00, 0x0D, 0x0A,
}

func TestDecodeExamplePayload(t *testing.T) {
	frames, err := Decode(examplePayload)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 1 {
		t.Fatalf("decoded %d frames, want 1", len(frames))
	}
	f := frames[0]

	wantEEG := []float64{3654.87, 3658.18, 3667.83, 3645.21, 3652.99, 3659.52, 3651.11, 3655.94}
	for ch, want := range wantEEG {
		if math.Abs(round(f.EEG[ch], 2)-want) > 1e-9 {
			t.Errorf("EEG[%d] = %.2f µV, want %.2f", ch, f.EEG[ch], want)
		}
	}

	wantAcc := []float64{-0.614, 0.182, -0.841}
	for ch, want := range wantAcc {
		if math.Abs(round(f.Acc[ch], 3)-want) > 1e-9 {
			t.Errorf("Acc[%d] = %.3f g, want %.3f", ch, f.Acc[ch], want)
		}
	}

	wantGyr := []float64{-0.396, -0.518, 1.067}
	for ch, want := range wantGyr {
		if math.Abs(round(f.Gyr[ch], 3)-want) > 1e-9 {
			t.Errorf("Gyr[%d] = %.3f deg/s, want %.3f", ch, f.Gyr[ch], want)
		}
	}

	if f.Counter != 176 {
		t.Errorf("Counter = %d, want 176", f.Counter)
	}
	if f.Battery != 1.0 {
		t.Errorf("Battery = %v, want 1.0", f.Battery)
	}
	if math.Abs(f.Time()-176.0/FS) > 1e-12 {
		t.Errorf("Time = %v, want %v", f.Time(), 176.0/FS)
	}
}

func TestDecodeMultipleFrames(t *testing.T) {
	block := bytes.Repeat(examplePayload, 3)
	frames, err := Decode(block)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 3 {
		t.Fatalf("decoded %d frames, want 3", len(frames))
	}
	for i := 1; i < 3; i++ {
		if frames[i] != frames[0] {
			t.Errorf("frame %d differs from frame 0", i)
		}
	}
}

func TestDecodeBadLength(t *testing.T) {
	if _, err := Decode(examplePayload[:PayloadLength-1]); err == nil {
		t.Fatal("expected error for truncated block")
	}
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
