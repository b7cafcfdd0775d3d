package leafpack

import (
	"errors"
	"testing"
)

func TestRotateInvolution(t *testing.T) {
	for mode := 0; mode < 8; mode++ {
		for v := 0; v < 256; v++ {
			b := byte(v)
			if got := Unrotate(mode, Rotate(mode, b)); got != b {
				t.Fatalf("Unrotate(%d, Rotate(%d, 0x%02X)) = 0x%02X", mode, mode, b, got)
			}
			if got := Rotate(mode, Unrotate(mode, b)); got != b {
				t.Fatalf("Rotate(%d, Unrotate(%d, 0x%02X)) = 0x%02X", mode, mode, b, got)
			}
		}
	}
}

func TestRotateAmounts(t *testing.T) {
	tests := []struct {
		mode int
		in   byte
		want byte
	}{
		{0, 0x12, 0x21}, // rotate left 4
		{1, 0x81, 0x06}, // rotate left 2
		{2, 0x43, 0xD0}, // rotate left 6
		{3, 0x01, 0x20}, // rotate left 5
		{4, 0x01, 0x08}, // rotate left 3
		{5, 0x01, 0x80}, // rotate left 7
		{6, 0x80, 0x01}, // rotate left 1
		{7, 0x01, 0x20}, // same as mode 3
	}

	for _, tt := range tests {
		if got := Rotate(tt.mode, tt.in); got != tt.want {
			t.Errorf("Rotate(%d, 0x%02X) = 0x%02X, want 0x%02X", tt.mode, tt.in, got, tt.want)
		}
	}
}

func TestModeZeroIsSelfInverse(t *testing.T) {
	for v := 0; v < 256; v++ {
		if Rotate(0, Rotate(0, byte(v))) != byte(v) {
			t.Fatalf("mode 0 is not self-inverse for 0x%02X", v)
		}
	}
}

func TestModeFor(t *testing.T) {
	tests := []struct {
		key  byte
		x    int
		want int
	}{
		{0x80, 0, 0},
		{0x40, 1, 1},
		{0x40, 2, 0},
		{0xFF, 7, 7},
		{0x01, 7, 7},
		{0x00, 5, 0},
		{0xF4, 2, 2},
		{0xF4, 4, 0},
	}

	for _, tt := range tests {
		if got := ModeFor(tt.key, tt.x); got != tt.want {
			t.Errorf("ModeFor(0x%02X, %d) = %d, want %d", tt.key, tt.x, got, tt.want)
		}
	}
}

func TestInvalidModePanics(t *testing.T) {
	for _, mode := range []int{-1, 8, 15, 255} {
		func() {
			defer func() {
				r := recover()
				if r == nil {
					t.Errorf("Rotate(%d) did not panic", mode)
					return
				}
				err, ok := r.(error)
				var ime *InvalidCipherModeError
				if !ok || !errors.As(err, &ime) || ime.Mode != mode {
					t.Errorf("Rotate(%d) panicked with %v, want *InvalidCipherModeError", mode, r)
				}
			}()
			Rotate(mode, 0x42)
		}()
	}

	defer func() {
		if recover() == nil {
			t.Error("Unrotate(9) did not panic")
		}
	}()
	Unrotate(9, 0x42)
}
