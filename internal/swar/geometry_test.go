package swar

import "testing"

func TestNewGeometryRejectsBadInputs(t *testing.T) {
	cases := []struct {
		name       string
		w, h, p    int
	}{
		{"zero width", 0, 16, 4},
		{"zero height", 16, 0, 4},
		{"odd width", 15, 16, 4},
		{"padding below 4", 16, 16, 2},
		{"padding not multiple of 4", 16, 16, 6},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := NewGeometry(c.w, c.h, c.p); err == nil {
				t.Fatalf("expected error for %s", c.name)
			}
		})
	}
}

func TestNewGeometryAccepts(t *testing.T) {
	g, err := NewGeometry(1280, 90, 16)
	if err != nil {
		t.Fatal(err)
	}
	if g.Stride != 1296 {
		t.Fatalf("stride = %d, want 1296", g.Stride)
	}
	if g.StateBytes != (g.Stride*g.H)/2 {
		t.Fatalf("StateBytes mismatch")
	}
	if g.NWords*8 != g.CapacityBytes {
		t.Fatalf("NWords/CapacityBytes mismatch")
	}
}
