package leafpack

import "math/bits"

// rotationAmounts holds the left-rotation amount for each mode. Mode 7
// repeats mode 3.
var rotationAmounts = [8]int{4, 2, 6, 5, 3, 7, 1, 5}

// rotationAmount returns the rotation for mode, panicking on values outside
// 0-7.
func rotationAmount(mode int) int {
	if mode < 0 || mode >= len(rotationAmounts) {
		panic(&InvalidCipherModeError{Mode: mode})
	}
	return rotationAmounts[mode]
}

// Rotate applies rotation mode to b.
func Rotate(mode int, b byte) byte {
	return bits.RotateLeft8(b, rotationAmount(mode))
}

// Unrotate reverses Rotate: Unrotate(m, Rotate(m, b)) == b for every mode
// and byte.
func Unrotate(mode int, b byte) byte {
	return bits.RotateLeft8(b, -rotationAmount(mode))
}

// ModeFor returns the rotation mode for position x (0-7) of an 8-bit key
// segment. Position 0 reads the key's most significant bit; a set bit selects
// mode x and a clear bit selects mode 0.
func ModeFor(key byte, x int) int {
	if x < 0 || x > 7 {
		panic(&InvalidCipherModeError{Mode: x})
	}
	if key&(0x80>>uint(x)) != 0 {
		return x
	}
	return 0
}
