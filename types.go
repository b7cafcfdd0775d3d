package leafpack

import (
	"fmt"
)

// CipherScheme selects the container variant: how many key bytes the header
// carries and how wide a rotation block is.
type CipherScheme uint8

const (
	// SchemeSingleKey uses one key byte and 8-byte blocks (magic "LPK1")
	SchemeSingleKey CipherScheme = iota + 1
	// SchemeDualKey uses two key bytes and 16-byte blocks (magic "LPK2")
	SchemeDualKey
)

// String returns the string representation of the scheme
func (s CipherScheme) String() string {
	switch s {
	case SchemeSingleKey:
		return "single-key"
	case SchemeDualKey:
		return "dual-key"
	default:
		return "unknown"
	}
}

// ParseScheme parses the names returned by CipherScheme.String.
func ParseScheme(name string) (CipherScheme, error) {
	switch name {
	case "single-key", "single", "lpk1":
		return SchemeSingleKey, nil
	case "dual-key", "dual", "lpk2":
		return SchemeDualKey, nil
	default:
		return 0, NewValidationError("scheme", name, fmt.Sprintf("unknown cipher scheme %q", name))
	}
}

// KeyWidth returns the number of key bytes stored in the header.
func (s CipherScheme) KeyWidth() int {
	if s == SchemeDualKey {
		return 2
	}
	return 1
}

// BlockWidth returns the rotation block size in bytes.
func (s CipherScheme) BlockWidth() int {
	return s.KeyWidth() * 8
}

// Magic returns the four magic bytes identifying the scheme.
func (s CipherScheme) Magic() [4]byte {
	if s == SchemeDualKey {
		return MagicDualKey
	}
	return MagicSingleKey
}

// HeaderSize returns the size of the fixed header: magic, key bytes, length
// byte and lock byte.
func (s CipherScheme) HeaderSize() int {
	return len(MagicSingleKey) + s.KeyWidth() + 2
}

// Valid reports whether s names a known scheme.
func (s CipherScheme) Valid() bool {
	return s == SchemeSingleKey || s == SchemeDualKey
}

// PasswordProvider is asked for a password when a protected container is
// decoded. It is only called for protected containers.
type PasswordProvider func() (string, error)

// StaticPassword returns a PasswordProvider that always yields password.
func StaticPassword(password string) PasswordProvider {
	return func() (string, error) {
		return password, nil
	}
}

// Config contains configuration for a Codec
type Config struct {
	// Scheme used for new containers. Defaults to SchemeSingleKey.
	Scheme CipherScheme

	// Random supplies key bytes, lock filler and selectors. Defaults to
	// NewCryptoSource().
	Random RandomSource

	// Strict rejects containers whose magic belongs to a scheme other than
	// Scheme. When false, Decode detects the scheme from the magic.
	Strict bool
}

// DefaultConfig returns the configuration used by the package-level helpers.
func DefaultConfig() *Config {
	return &Config{
		Scheme: SchemeSingleKey,
		Random: NewCryptoSource(),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.Scheme != 0 && !c.Scheme.Valid() {
		return &ValidationError{
			Field:   "scheme",
			Value:   c.Scheme,
			Message: "unsupported cipher scheme",
			Err:     ErrUnsupportedScheme,
		}
	}
	return nil
}
