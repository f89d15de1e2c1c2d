package model

import (
	"testing"
)

func TestSplitSubPath_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		subPath string
		wantLen int
	}{
		{"single segment", "cars", 1},
		{"nested", "cars/42/images", 3},
		{"trailing slash kept", "cars/", 2},
		{"double slash kept", "cars//42", 3},
		{"escaped slash stays in segment", "files/a%2Fb", 2},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := SplitSubPath(tt.subPath)
			if len(segs) != tt.wantLen {
				t.Fatalf("len(SplitSubPath(%q)) = %d, want %d", tt.subPath, len(segs), tt.wantLen)
			}
			r := &ForwardRequest{Segments: segs}
			if got := r.SubPath(); got != tt.subPath {
				t.Errorf("SubPath() = %q, want %q", got, tt.subPath)
			}
		})
	}
}

func TestSubPath_PreservesOrder(t *testing.T) {
	r := &ForwardRequest{Segments: []string{"z", "a", "m"}}
	if got := r.SubPath(); got != "z/a/m" {
		t.Errorf("SubPath() = %q, want %q", got, "z/a/m")
	}
}
