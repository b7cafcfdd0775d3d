package leafpack

import (
	"bytes"
	"fmt"
	"io"
)

var (
	// MagicSingleKey identifies single-key containers (ASCII: "LPK1")
	MagicSingleKey = [4]byte{0x4C, 0x50, 0x4B, 0x31}

	// MagicDualKey identifies dual-key containers (ASCII: "LPK2")
	MagicDualKey = [4]byte{0x4C, 0x50, 0x4B, 0x32}
)

const (
	// LockThreshold is the highest lock byte value that marks a container as
	// password protected. Larger values are filler.
	LockThreshold = 0x45

	// TrailerSize is the size of the password trailer (CRC-32 of the password)
	TrailerSize = 4

	// MaxFilenameLength is the longest filename whose length byte (length + 1)
	// still fits in one byte.
	MaxFilenameLength = 254

	// MinHeaderSize is the smallest possible header (single-key scheme)
	// 4 bytes (magic) + 1 byte (key) + 1 byte (length) + 1 byte (lock) = 7 bytes
	MinHeaderSize = 7
)

// lockSentinels maps a single-key password selector (the index of the CRC-32
// byte used as key) to the lock byte recording it.
var lockSentinels = [4]byte{0x11, 0x25, 0x38, 0x43}

// selectorForLock returns the selector recorded by a single-key lock byte.
func selectorForLock(lock byte) (int, bool) {
	for i, s := range lockSentinels {
		if s == lock {
			return i, true
		}
	}
	return 0, false
}

// Header represents the fixed header of a container
type Header struct {
	Scheme CipherScheme // Container variant, implied by the magic
	Keys   [2]byte      // Key bytes as stored; decoys in password mode. Keys[1] is unused by SchemeSingleKey
	Length byte         // Filename length + 1, including the implicit terminator slot
	Lock   byte         // <= LockThreshold: password protected; otherwise filler
}

// NewHeader creates a header for a filename of nameLen bytes
func NewHeader(scheme CipherScheme, keys [2]byte, nameLen int, lock byte) (*Header, error) {
	if !scheme.Valid() {
		return nil, ErrUnsupportedScheme
	}
	if nameLen < 0 || nameLen > MaxFilenameLength {
		return nil, &MalformedContainerError{
			Offset:  -1,
			Message: fmt.Sprintf("filename is %d bytes, maximum is %d", nameLen, MaxFilenameLength),
			Err:     ErrFilenameTooLong,
		}
	}
	if scheme == SchemeSingleKey {
		keys[1] = 0
	}
	return &Header{
		Scheme: scheme,
		Keys:   keys,
		Length: byte(nameLen + 1),
		Lock:   lock,
	}, nil
}

// Protected reports whether the lock byte marks a password-protected container
func (h *Header) Protected() bool {
	return h.Lock <= LockThreshold
}

// Size returns the size of the header in bytes
func (h *Header) Size() int {
	return h.Scheme.HeaderSize()
}

// FilenameSize returns the number of filename bytes stored after the header.
// The terminator slot counted by Length is not materialized.
func (h *Header) FilenameSize() int {
	if h.Length == 0 {
		return 0
	}
	return int(h.Length) - 1
}

// TrailerSize returns the size of the trailer that follows the payload
func (h *Header) TrailerSize() int {
	if h.Protected() {
		return TrailerSize
	}
	return 0
}

// Overhead returns the number of container bytes that are not payload
func (h *Header) Overhead() int {
	return h.Size() + h.FilenameSize() + h.TrailerSize()
}

// Bytes returns the encoded header
func (h *Header) Bytes() []byte {
	magic := h.Scheme.Magic()
	buf := make([]byte, 0, h.Size())
	buf = append(buf, magic[:]...)
	buf = append(buf, h.Keys[:h.Scheme.KeyWidth()]...)
	buf = append(buf, h.Length, h.Lock)
	return buf
}

// WriteTo writes the header to the given writer
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(h.Bytes())
	if err != nil {
		return int64(n), fmt.Errorf("failed to write header: %w", err)
	}
	return int64(n), nil
}

// DetectScheme identifies the scheme from the first four bytes of data
func DetectScheme(data []byte) (CipherScheme, error) {
	if len(data) < len(MagicSingleKey) {
		return 0, newMalformed(0, ErrTruncated,
			fmt.Sprintf("need %d magic bytes, got %d", len(MagicSingleKey), len(data)))
	}
	switch {
	case bytes.Equal(data[:4], MagicSingleKey[:]):
		return SchemeSingleKey, nil
	case bytes.Equal(data[:4], MagicDualKey[:]):
		return SchemeDualKey, nil
	default:
		return 0, newMalformed(0, ErrInvalidMagic, fmt.Sprintf("unrecognized magic % x", data[:4]))
	}
}

// ParseHeader parses and validates the header at the start of data. It checks
// the magic before anything else and confirms that the filename region and
// any trailer fit inside data before returning.
func ParseHeader(data []byte) (*Header, error) {
	scheme, err := DetectScheme(data)
	if err != nil {
		return nil, err
	}

	size := scheme.HeaderSize()
	if len(data) < size {
		return nil, newMalformed(len(data), ErrTruncated,
			fmt.Sprintf("%s header needs %d bytes, got %d", scheme, size, len(data)))
	}

	h := &Header{Scheme: scheme}
	off := len(MagicSingleKey)
	copy(h.Keys[:], data[off:off+scheme.KeyWidth()])
	off += scheme.KeyWidth()
	h.Length = data[off]
	h.Lock = data[off+1]

	if err := h.Validate(); err != nil {
		return nil, err
	}

	if need := h.Overhead(); len(data) < need {
		return nil, newMalformed(off, ErrLengthMismatch,
			fmt.Sprintf("length byte %d needs at least %d bytes, container has %d", h.Length, need, len(data)))
	}

	return h, nil
}

// ReadHeader reads and parses a header from r. It reads exactly the header
// bytes and does not check region sizes.
func ReadHeader(r io.Reader) (*Header, error) {
	buf := make([]byte, SchemeDualKey.HeaderSize())
	if _, err := io.ReadFull(r, buf[:len(MagicSingleKey)]); err != nil {
		return nil, newMalformed(0, ErrTruncated, fmt.Sprintf("failed to read magic bytes: %v", err))
	}
	scheme, err := DetectScheme(buf)
	if err != nil {
		return nil, err
	}
	size := scheme.HeaderSize()
	if _, err := io.ReadFull(r, buf[len(MagicSingleKey):size]); err != nil {
		return nil, newMalformed(len(MagicSingleKey), ErrTruncated, fmt.Sprintf("failed to read header: %v", err))
	}

	h := &Header{Scheme: scheme}
	off := len(MagicSingleKey)
	copy(h.Keys[:], buf[off:off+scheme.KeyWidth()])
	off += scheme.KeyWidth()
	h.Length = buf[off]
	h.Lock = buf[off+1]
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Validate checks if the header is valid
func (h *Header) Validate() error {
	if !h.Scheme.Valid() {
		return ErrUnsupportedScheme
	}
	lengthOffset := len(MagicSingleKey) + h.Scheme.KeyWidth()
	if h.Length == 0 {
		return newMalformed(lengthOffset, ErrLengthMismatch, "length byte is zero")
	}
	if h.Scheme == SchemeSingleKey && h.Protected() {
		if _, ok := selectorForLock(h.Lock); !ok {
			return newMalformed(lengthOffset+1, ErrUnknownLock,
				fmt.Sprintf("lock byte 0x%02x is not a known sentinel", h.Lock))
		}
	}
	return nil
}
