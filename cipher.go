package leafpack

import (
	"fmt"
)

// CipherEngine transforms the filename and payload regions of a container
type CipherEngine interface {
	// Encrypt transforms src into dst
	Encrypt(dst, src []byte)

	// Decrypt reverses Encrypt
	Decrypt(dst, src []byte)

	// BlockWidth returns the size of a key-bit cycle in bytes
	BlockWidth() int
}

// RotationEngine implements CipherEngine with the keyed nibble rotation.
// Block positions restart at the first byte of every region; position p of a
// block uses key byte p/8 and bit p%8.
type RotationEngine struct {
	keys  []byte
	modes []int
}

// NewRotationEngine creates an engine for the given key bytes. The block is
// 8 bytes wide per key byte.
func NewRotationEngine(keys ...byte) (*RotationEngine, error) {
	if len(keys) == 0 || len(keys) > 2 {
		return nil, fmt.Errorf("rotation engine requires 1 or 2 key bytes, got %d", len(keys))
	}

	modes := make([]int, len(keys)*8)
	for p := range modes {
		modes[p] = ModeFor(keys[p/8], p%8)
	}

	return &RotationEngine{
		keys:  append([]byte(nil), keys...),
		modes: modes,
	}, nil
}

// NewCipherEngine creates the engine for a scheme from key material
func NewCipherEngine(scheme CipherScheme, keys [2]byte) (CipherEngine, error) {
	switch scheme {
	case SchemeSingleKey:
		return NewRotationEngine(keys[0])
	case SchemeDualKey:
		return NewRotationEngine(keys[0], keys[1])
	default:
		return nil, ErrUnsupportedScheme
	}
}

// BlockWidth returns the block size in bytes
func (e *RotationEngine) BlockWidth() int {
	return len(e.modes)
}

// Encrypt rotates src into dst. The final block may be short; nothing is
// padded. dst must be at least len(src) bytes.
func (e *RotationEngine) Encrypt(dst, src []byte) {
	e.apply(dst, src, Rotate)
}

// Decrypt reverses Encrypt
func (e *RotationEngine) Decrypt(dst, src []byte) {
	e.apply(dst, src, Unrotate)
}

func (e *RotationEngine) apply(dst, src []byte, op func(int, byte) byte) {
	width := len(e.modes)
	for i := 0; i < len(src); i += width {
		end := i + width
		if end > len(src) {
			end = len(src)
		}
		for x := 0; x < end-i; x++ {
			dst[i+x] = op(e.modes[x], src[i+x])
		}
	}
}
