package leafpack

import (
	"fmt"
	"sync"
)

// Codec encodes and decodes containers. A Codec is safe for concurrent use
// as long as its RandomSource is, which holds for every source in this
// package.
type Codec struct {
	scheme CipherScheme
	strict bool
	keys   *KeyMaterialSource
}

// NewCodec creates a codec from config. A nil config uses DefaultConfig().
func NewCodec(config *Config) (*Codec, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	scheme := config.Scheme
	if scheme == 0 {
		scheme = SchemeSingleKey
	}

	return &Codec{
		scheme: scheme,
		strict: config.Strict,
		keys:   NewKeyMaterialSource(config.Random),
	}, nil
}

// Scheme returns the scheme used for new containers
func (c *Codec) Scheme() CipherScheme {
	return c.scheme
}

// Encode builds an unprotected container holding payload under filename
func (c *Codec) Encode(payload []byte, filename string) ([]byte, error) {
	return c.encodeAs(c.scheme, payload, filename, nil)
}

// EncodeWithPassword builds a password-protected container. The password may
// be empty; it still produces a trailer and password-derived keys.
func (c *Codec) EncodeWithPassword(payload []byte, filename, password string) ([]byte, error) {
	return c.encodeAs(c.scheme, payload, filename, &password)
}

// encodeAs lays out a container for scheme. A nil password produces an
// unprotected container.
func (c *Codec) encodeAs(scheme CipherScheme, payload []byte, filename string, password *string) ([]byte, error) {
	if err := ValidateFilename(filename); err != nil {
		return nil, err
	}

	var km KeyMaterial
	var err error
	if password != nil {
		km, err = c.keys.FromPassword(scheme, *password)
	} else {
		km, err = c.keys.Generate(scheme)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate key material: %w", err)
	}

	header, err := NewHeader(scheme, km.Stored, len(filename), km.Lock)
	if err != nil {
		return nil, err
	}

	engine, err := NewCipherEngine(scheme, km.Keys)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher engine: %w", err)
	}

	out := make([]byte, header.Size()+len(filename)+len(payload)+header.TrailerSize())
	off := copy(out, header.Bytes())

	engine.Encrypt(out[off:off+len(filename)], []byte(filename))
	off += len(filename)

	engine.Encrypt(out[off:off+len(payload)], payload)
	off += len(payload)

	if km.Protected {
		copy(out[off:], km.Trailer[:])
	}

	return out, nil
}

// Decode recovers the filename and payload from a container. passwords is
// only consulted for protected containers; a nil provider then fails with
// ErrPasswordRequired. Nothing is returned on failure.
func (c *Codec) Decode(container []byte, passwords PasswordProvider) (string, []byte, error) {
	header, err := ParseHeader(container)
	if err != nil {
		return "", nil, err
	}
	if c.strict && header.Scheme != c.scheme {
		return "", nil, newMalformed(0, ErrInvalidMagic,
			fmt.Sprintf("expected a %s container, got %s", c.scheme, header.Scheme))
	}

	var trailer [4]byte
	var password string
	if header.Protected() {
		if passwords == nil {
			return "", nil, &PasswordRejectedError{
				Message: "no password provided",
				Err:     ErrPasswordRequired,
			}
		}
		password, err = passwords()
		if err != nil {
			return "", nil, fmt.Errorf("failed to obtain password: %w", err)
		}
		copy(trailer[:], container[len(container)-TrailerSize:])
	}

	km, err := c.keys.Recover(header, trailer, password)
	if err != nil {
		return "", nil, err
	}

	engine, err := NewCipherEngine(header.Scheme, km.Keys)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create cipher engine: %w", err)
	}

	nameStart := header.Size()
	nameEnd := nameStart + header.FilenameSize()
	payloadEnd := len(container) - header.TrailerSize()

	name := make([]byte, nameEnd-nameStart)
	engine.Decrypt(name, container[nameStart:nameEnd])

	payload := make([]byte, payloadEnd-nameEnd)
	engine.Decrypt(payload, container[nameEnd:payloadEnd])

	return string(name), payload, nil
}

var defaultCodec = sync.OnceValue(func() *Codec {
	c, err := NewCodec(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return c
})

// Encode builds an unprotected single-key container with the default codec
func Encode(payload []byte, filename string) ([]byte, error) {
	return defaultCodec().Encode(payload, filename)
}

// EncodeWithPassword builds a protected single-key container with the
// default codec
func EncodeWithPassword(payload []byte, filename, password string) ([]byte, error) {
	return defaultCodec().EncodeWithPassword(payload, filename, password)
}

// Decode decodes a container of either scheme with the default codec
func Decode(container []byte, passwords PasswordProvider) (string, []byte, error) {
	return defaultCodec().Decode(container, passwords)
}
