package models

import "testing"

func TestLevelToQty(t *testing.T) {
	tests := []struct {
		name         string
		level        string
		qtyStandard  int
		lowThreshold int
		want         int
	}{
		{"ok maps to standard", LevelOK, 12, 3, 12},
		{"running low maps to threshold", LevelRunningLow, 12, 3, 3},
		{"out maps to zero", LevelOut, 12, 3, 0},
		{"unknown level maps to zero", "WHATEVER", 12, 3, 0},
		{"empty level maps to zero", "", 12, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelToQty(tt.level, tt.qtyStandard, tt.lowThreshold); got != tt.want {
				t.Errorf("LevelToQty(%q, %d, %d) = %d, want %d",
					tt.level, tt.qtyStandard, tt.lowThreshold, got, tt.want)
			}
		})
	}
}

func TestDeriveLevel(t *testing.T) {
	tests := []struct {
		name         string
		qty          int
		lowThreshold int
		want         string
	}{
		{"zero is out", 0, 3, LevelOut},
		{"negative is out", -5, 3, LevelOut},
		{"at threshold is running low", 3, 3, LevelRunningLow},
		{"below threshold is running low", 1, 3, LevelRunningLow},
		{"above threshold is ok", 4, 3, LevelOK},
		{"zero threshold, one on hand is ok", 1, 0, LevelOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveLevel(tt.qty, tt.lowThreshold); got != tt.want {
				t.Errorf("DeriveLevel(%d, %d) = %q, want %q", tt.qty, tt.lowThreshold, got, tt.want)
			}
		})
	}
}

func TestLevelRoundTrip(t *testing.T) {
	// A reported level, mapped to a quantity, must derive back to itself
	// for any catalog item with a sensible threshold.
	qtyStandard, lowThreshold := 10, 4
	for _, level := range []string{LevelOK, LevelRunningLow, LevelOut} {
		qty := LevelToQty(level, qtyStandard, lowThreshold)
		if got := DeriveLevel(qty, lowThreshold); got != level {
			t.Errorf("round trip for %q: qty %d derived %q", level, qty, got)
		}
	}
}
