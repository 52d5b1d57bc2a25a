package util

import (
	"testing"
	"time"
)

func TestISOTimestamp(t *testing.T) {
	in := time.Date(2024, 10, 10, 10, 10, 10, 500_000_000, time.UTC)
	got := ISOTimestamp(in)
	if got != "2024-10-10T10:10:10.5Z" {
		t.Fatalf("unexpected timestamp %q", got)
	}
	back, err := time.Parse(time.RFC3339Nano, got)
	if err != nil || !back.Equal(in) {
		t.Fatalf("round trip failed: %v %v", back, err)
	}
}

func TestNowISOParses(t *testing.T) {
	if _, err := time.Parse(time.RFC3339Nano, NowISO()); err != nil {
		t.Fatalf("NowISO not RFC3339Nano: %v", err)
	}
}
