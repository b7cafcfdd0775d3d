package leafpack

import (
	"fmt"
)

const (
	// maxKeyByte is the largest value drawn for a random key or decoy byte
	maxKeyByte = 253

	// maxFillerByte is the largest value drawn for a lock filler byte
	maxFillerByte = 254
)

// KeyMaterial holds everything the codec needs to lay out and transform one
// container.
type KeyMaterial struct {
	Keys      [2]byte // Key bytes driving the rotation; Keys[1] only for SchemeDualKey
	Stored    [2]byte // Key bytes written to the header (decoys in password mode)
	Lock      byte    // Lock byte written to the header
	Protected bool    // Whether a trailer follows the payload
	Trailer   [4]byte // CRC-32 of the password, most significant byte first
}

// KeyMaterialSource produces random or password-derived key material
type KeyMaterialSource struct {
	random RandomSource
}

// NewKeyMaterialSource creates a key material source drawing from random.
// A nil random uses NewCryptoSource().
func NewKeyMaterialSource(random RandomSource) *KeyMaterialSource {
	if random == nil {
		random = NewCryptoSource()
	}
	return &KeyMaterialSource{random: random}
}

// Generate returns random key material for an unprotected container. Key
// bytes are uniform over [0,253]; the lock byte is filler above
// LockThreshold.
func (s *KeyMaterialSource) Generate(scheme CipherScheme) (KeyMaterial, error) {
	if !scheme.Valid() {
		return KeyMaterial{}, ErrUnsupportedScheme
	}

	var km KeyMaterial
	for i := 0; i < scheme.KeyWidth(); i++ {
		km.Keys[i] = drawRange(s.random, 0, maxKeyByte)
	}
	km.Stored = km.Keys
	km.Lock = drawRange(s.random, LockThreshold+1, maxFillerByte)
	return km, nil
}

// FromPassword derives key material for a protected container.
//
// SchemeSingleKey picks one of the four CRC-32 bytes at random and records
// the choice in the lock byte. SchemeDualKey uses the high and low byte of
// the password's CRC-16 directly; its lock byte is any value up to
// LockThreshold. In both schemes the header key bytes are random decoys.
func (s *KeyMaterialSource) FromPassword(scheme CipherScheme, password string) (KeyMaterial, error) {
	if !scheme.Valid() {
		return KeyMaterial{}, ErrUnsupportedScheme
	}

	km := KeyMaterial{
		Protected: true,
		Trailer:   Split32(CRC32([]byte(password))),
	}
	for i := 0; i < scheme.KeyWidth(); i++ {
		km.Stored[i] = drawRange(s.random, 0, maxKeyByte)
	}

	switch scheme {
	case SchemeSingleKey:
		selector := s.random.Intn(len(lockSentinels))
		km.Keys[0] = km.Trailer[selector]
		km.Lock = lockSentinels[selector]
	case SchemeDualKey:
		km.Keys = Split16(CRC16([]byte(password)))
		km.Lock = drawRange(s.random, 0, LockThreshold-1)
	}
	return km, nil
}

// Recover rebuilds the key material of a parsed container. For protected
// containers the password is checked against trailer first; a mismatch is a
// PasswordRejectedError and no key is derived.
func (s *KeyMaterialSource) Recover(h *Header, trailer [4]byte, password string) (KeyMaterial, error) {
	km := KeyMaterial{
		Keys:   h.Keys,
		Stored: h.Keys,
		Lock:   h.Lock,
	}
	if !h.Protected() {
		return km, nil
	}

	km.Protected = true
	km.Trailer = trailer
	if Split32(CRC32([]byte(password))) != trailer {
		return KeyMaterial{}, &PasswordRejectedError{
			Message: "trailer checksum does not match password",
			Err:     ErrPasswordMismatch,
		}
	}

	switch h.Scheme {
	case SchemeSingleKey:
		selector, ok := selectorForLock(h.Lock)
		if !ok {
			return KeyMaterial{}, newMalformed(h.Size()-1, ErrUnknownLock,
				fmt.Sprintf("lock byte 0x%02x is not a known sentinel", h.Lock))
		}
		km.Keys = [2]byte{trailer[selector], 0}
	case SchemeDualKey:
		km.Keys = Split16(CRC16([]byte(password)))
	default:
		return KeyMaterial{}, ErrUnsupportedScheme
	}
	return km, nil
}
