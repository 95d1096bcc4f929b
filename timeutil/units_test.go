package timeutil

import "testing"

func TestToSeconds(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		unit  Unit
		want  float64
	}{
		{"seconds", 5, Seconds, 5},
		{"minutes", 2, Minutes, 120},
		{"hours", 1, Hours, 3600},
		{"milliseconds", 1000, Milliseconds, 1},
		{"days", 1, Days, 86400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToSeconds(tt.value, tt.unit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestToSecondsUnknownUnit(t *testing.T) {
	if _, err := ToSeconds(1, Unit("fortnight")); err == nil {
		t.Errorf("expected error for unknown unit, got nil")
	}
}

func TestFromSecondsRoundTrip(t *testing.T) {
	units := []Unit{Nanoseconds, Microseconds, Milliseconds, Seconds, Minutes, Hours, Days}
	for _, u := range units {
		seconds, _ := ToSeconds(3.5, u)
		back, err := FromSeconds(seconds, u)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := back - 3.5; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("round trip for %s: expected 3.5, got %v", u, back)
		}
	}
}

func TestHumanize(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
	}{
		{"sub-second", 0.0005},
		{"seconds", 45},
		{"minutes", 90},
		{"hours", 7200},
		{"days", 172800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Humanize(tt.seconds)
			if got == "" {
				t.Errorf("expected non-empty string for %v seconds", tt.seconds)
			}
		})
	}
}
