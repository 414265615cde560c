package models

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"OK", StatusOK, false},
		{"ok", StatusOK, false},
		{" FAIL ", StatusFail, false},
		{"fail", StatusFail, false},
		{"", "", true},
		{"FAILED", "", true},
		{"1", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidStatus) {
				t.Errorf("ParseStatus(%q): expected ErrInvalidStatus, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseStatus(%q): unexpected error %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseStatus(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSensorRecord_FeaturesAndLabel(t *testing.T) {
	r := SensorRecord{Temperature: 91, Vibration: 0.03, Pressure: 33, Status: StatusFail}

	f := r.Features()
	if len(f) != 3 || f[0] != 91 || f[1] != 0.03 || f[2] != 33 {
		t.Errorf("unexpected features %v", f)
	}
	if r.Status.Label() != 1 {
		t.Errorf("FAIL label = %v, want 1", r.Status.Label())
	}
	if StatusOK.Label() != 0 {
		t.Errorf("OK label = %v, want 0", StatusOK.Label())
	}
}
