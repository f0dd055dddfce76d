package utils

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"9:00 AM", 540},
		{"09:00 AM", 540},
		{"12:00 PM", 720},
		{"12:30 AM", 30},
		{"2:00 PM", 840},
		{"14:00", 840},
		{"17:45", 1065},
	}
	for _, c := range cases {
		got, err := ParseClock(c.in)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseClock(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseClockInvalid(t *testing.T) {
	for _, in := range []string{"", "soon", "25:00", "9 o'clock"} {
		if _, err := ParseClock(in); err == nil {
			t.Errorf("ParseClock(%q) expected error", in)
		}
	}
}

func TestFormatClockRoundTrip(t *testing.T) {
	for _, minutes := range []int{0, 540, 720, 750, 840, 1065} {
		label := FormatClock(minutes)
		got, err := ParseClock(label)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", label, err)
		}
		if got != minutes {
			t.Errorf("round trip %d -> %q -> %d", minutes, label, got)
		}
	}
}

func TestCombineDateTime(t *testing.T) {
	got, err := CombineDateTime("2024-01-16", "10:00 AM", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("CombineDateTime = %s, want %s", got, want)
	}
}
