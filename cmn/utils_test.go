package cmn

import (
	"testing"
	"time"
)

func TestRandDuration(t *testing.T) {
	min := 3 * time.Second
	max := 10 * time.Second

	for i := 0; i < 100; i++ {
		d := RandDuration(min, max)
		if d < min || d > max {
			t.Fatalf("RandDuration = %v, want within [%v, %v]", d, min, max)
		}
	}

	if d := RandDuration(max, min); d != max {
		t.Errorf("RandDuration with min >= max should return min, got %v", d)
	}
	if d := RandDuration(0, 0); d != 0 {
		t.Errorf("RandDuration(0, 0) = %v, want 0", d)
	}
}

func TestMaskKey(t *testing.T) {
	if masked := MaskKey("sk-0123456789abcdef"); masked != "sk-01234****" {
		t.Errorf("MaskKey = %q, want %q", masked, "sk-01234****")
	}
	if masked := MaskKey("short"); masked != "****" {
		t.Errorf("short keys should be fully masked, got %q", masked)
	}
	if masked := MaskKey(""); masked != "****" {
		t.Errorf("empty key should be fully masked, got %q", masked)
	}
}

func TestGetDurationUntilNextTargetTime(t *testing.T) {
	d, err := GetDurationUntilNextTargetTime(7, 30, 0, "Asia/Shanghai")
	if err != nil {
		t.Fatalf("GetDurationUntilNextTargetTime failed: %v", err)
	}
	if d <= 0 || d > 24*time.Hour {
		t.Errorf("duration = %v, want within (0, 24h]", d)
	}

	_, err = GetDurationUntilNextTargetTime(7, 30, 0, "Mars/Olympus")
	if err == nil {
		t.Error("unknown location should be rejected")
	}
}
