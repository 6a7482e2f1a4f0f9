package discovery

import (
	"log/slog"
	"strings"
	"testing"
)

func TestParseLine(t *testing.T) {
	cases := []struct {
		line string
		want Device
		ok   bool
	}{
		{
			line: "[NEW] Device 60:B6:47:E8:53:D2 UN-2022.03.41",
			want: Device{Address: "60:B6:47:E8:53:D2", Name: "UN-2022.03.41"},
			ok:   true,
		},
		{
			// bluetoothctl colors its tags.
			line: "\x01\x1b[0;92m\x02[NEW]\x01\x1b[0m\x02 Device a0:b1:c2:d3:e4:f5 Some Headphones",
			want: Device{Address: "A0:B1:C2:D3:E4:F5", Name: "Some Headphones"},
			ok:   true,
		},
		{line: "[CHG] Device 60:B6:47:E8:53:D2 RSSI: -54", ok: false},
		{line: "[DEL] Device 60:B6:47:E8:53:D2 UN-2022.03.41", ok: false},
		{line: "Agent registered", ok: false},
		{line: "", ok: false},
	}

	for _, tc := range cases {
		got, ok := ParseLine(tc.line)
		if ok != tc.ok {
			t.Errorf("ParseLine(%q) ok = %v, want %v", tc.line, ok, tc.ok)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("ParseLine(%q) = %+v, want %+v", tc.line, got, tc.want)
		}
	}
}

func TestCollectDeduplicates(t *testing.T) {
	out := strings.Join([]string{
		"Agent registered",
		"[NEW] Device 60:B6:47:E8:53:D2 UN-2022.03.41",
		"[CHG] Device 60:B6:47:E8:53:D2 RSSI: -54",
		"[NEW] Device 60:B6:47:E8:53:D2 UN-2022.03.41",
		"[NEW] Device A0:B1:C2:D3:E4:F5 Some Headphones",
	}, "\n")

	devices := collect(strings.NewReader(out), slog.New(slog.DiscardHandler))
	if len(devices) != 2 {
		t.Fatalf("devices = %+v, want 2 entries", devices)
	}
	if devices[0].Address != "60:B6:47:E8:53:D2" || devices[1].Address != "A0:B1:C2:D3:E4:F5" {
		t.Fatalf("devices = %+v", devices)
	}
}

func TestUnicornsFilter(t *testing.T) {
	all := []Device{
		{Address: "60:B6:47:E8:53:D2", Name: "UN-2022.03.41"},
		{Address: "A0:B1:C2:D3:E4:F5", Name: "Some Headphones"},
	}
	got := Unicorns(all)
	if len(got) != 1 || got[0].Name != "UN-2022.03.41" {
		t.Fatalf("Unicorns = %+v", got)
	}
}
