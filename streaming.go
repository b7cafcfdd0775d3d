package leafpack

import (
	"errors"
	"fmt"
	"io"
)

// StreamingConfig controls streaming encode and decode
type StreamingConfig struct {
	BufferSize int // Bytes transformed per underlying read or write (default: 64KB)
}

// DefaultStreamingConfig returns sensible defaults for streaming
func DefaultStreamingConfig() StreamingConfig {
	return StreamingConfig{
		BufferSize: 64 * 1024, // 64 KB
	}
}

// Validate checks if the streaming configuration is valid
func (s *StreamingConfig) Validate() error {
	return ValidateSize(s.BufferSize, "stream buffer size", 16, 64*1024*1024)
}

// alignedBuffer returns a buffer whose size is a multiple of width, so every
// chunk handed to the engine starts on a block boundary.
func (s StreamingConfig) alignedBuffer(width int) []byte {
	size := s.BufferSize
	if size <= 0 {
		size = DefaultStreamingConfig().BufferSize
	}
	size -= size % width
	if size < width {
		size = width
	}
	return make([]byte, size)
}

// Encoder writes a container to an underlying writer as payload bytes
// arrive. The header and filename are written by NewEncoder; Close writes
// the final partial block and the password trailer.
type Encoder struct {
	w       io.Writer
	engine  CipherEngine
	width   int
	pending []byte // Payload bytes not yet forming a full block
	out     []byte
	trailer []byte
	written int64
	closed  bool
	err     error
}

// NewEncoder starts a container on w. A nil password produces an
// unprotected container.
func (c *Codec) NewEncoder(w io.Writer, filename string, password *string, config StreamingConfig) (*Encoder, error) {
	if err := ValidateFilename(filename); err != nil {
		return nil, err
	}

	var km KeyMaterial
	var err error
	if password != nil {
		km, err = c.keys.FromPassword(c.scheme, *password)
	} else {
		km, err = c.keys.Generate(c.scheme)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate key material: %w", err)
	}

	header, err := NewHeader(c.scheme, km.Stored, len(filename), km.Lock)
	if err != nil {
		return nil, err
	}
	engine, err := NewCipherEngine(c.scheme, km.Keys)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher engine: %w", err)
	}

	e := &Encoder{
		w:      w,
		engine: engine,
		width:  engine.BlockWidth(),
		out:    config.alignedBuffer(engine.BlockWidth()),
	}
	if km.Protected {
		e.trailer = append([]byte(nil), km.Trailer[:]...)
	}

	prefix := make([]byte, header.Size()+len(filename))
	copy(prefix, header.Bytes())
	engine.Encrypt(prefix[header.Size():], []byte(filename))
	if err := e.emit(prefix); err != nil {
		return nil, err
	}
	return e, nil
}

// Write transforms p and writes every completed block
func (e *Encoder) Write(p []byte) (int, error) {
	if e.closed {
		return 0, errors.New("leafpack: write to closed encoder")
	}
	if e.err != nil {
		return 0, e.err
	}

	n := len(p)
	for len(p) > 0 {
		// Fill the pending block first so chunks stay block aligned.
		if len(e.pending) > 0 || len(p) < e.width {
			take := e.width - len(e.pending)
			if take > len(p) {
				take = len(p)
			}
			e.pending = append(e.pending, p[:take]...)
			p = p[take:]
			if len(e.pending) == e.width {
				if err := e.flush(e.pending); err != nil {
					return 0, err
				}
				e.pending = e.pending[:0]
			}
			continue
		}

		chunk := len(p) - len(p)%e.width
		if chunk > len(e.out) {
			chunk = len(e.out)
		}
		if err := e.flush(p[:chunk]); err != nil {
			return 0, err
		}
		p = p[chunk:]
	}
	return n, nil
}

// Close writes any buffered bytes and the trailer. It does not close the
// underlying writer.
func (e *Encoder) Close() error {
	if e.closed {
		return e.err
	}
	e.closed = true
	if e.err != nil {
		return e.err
	}
	if len(e.pending) > 0 {
		if err := e.flush(e.pending); err != nil {
			return err
		}
		e.pending = nil
	}
	if e.trailer != nil {
		return e.emit(e.trailer)
	}
	return nil
}

// Written returns the number of container bytes written so far
func (e *Encoder) Written() int64 {
	return e.written
}

func (e *Encoder) flush(block []byte) error {
	out := e.out[:len(block)]
	e.engine.Encrypt(out, block)
	return e.emit(out)
}

func (e *Encoder) emit(b []byte) error {
	n, err := e.w.Write(b)
	e.written += int64(n)
	if err == nil && n < len(b) {
		err = io.ErrShortWrite
	}
	if err != nil {
		e.err = fmt.Errorf("failed to write container: %w", err)
	}
	return e.err
}

// Decoder reads the payload of a container from an underlying reader. The
// header, password and filename are checked by NewDecoder, so a Decoder that
// was created successfully only fails on I/O errors.
type Decoder struct {
	header *Header
	name   string
	size   int64
	src    io.Reader
	engine CipherEngine
	buf    []byte
	out    []byte
	eof    bool
}

// NewDecoder parses the container in r. The container size is taken from the
// end of r; protected containers read their trailer before any payload byte
// is returned.
func (c *Codec) NewDecoder(r io.ReadSeeker, passwords PasswordProvider, config StreamingConfig) (*Decoder, error) {
	total, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to determine container size: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind container: %w", err)
	}

	header, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if c.strict && header.Scheme != c.scheme {
		return nil, newMalformed(0, ErrInvalidMagic,
			fmt.Sprintf("expected a %s container, got %s", c.scheme, header.Scheme))
	}
	if need := int64(header.Overhead()); total < need {
		return nil, newMalformed(header.Size()-2, ErrLengthMismatch,
			fmt.Sprintf("length byte %d needs at least %d bytes, container has %d", header.Length, need, total))
	}

	var trailer [4]byte
	var password string
	if header.Protected() {
		if passwords == nil {
			return nil, &PasswordRejectedError{
				Message: "no password provided",
				Err:     ErrPasswordRequired,
			}
		}
		password, err = passwords()
		if err != nil {
			return nil, fmt.Errorf("failed to obtain password: %w", err)
		}
		if _, err := r.Seek(total-TrailerSize, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to seek to trailer: %w", err)
		}
		if _, err := io.ReadFull(r, trailer[:]); err != nil {
			return nil, newMalformed(int(total-TrailerSize), ErrTruncated,
				fmt.Sprintf("failed to read trailer: %v", err))
		}
		if _, err := r.Seek(int64(header.Size()), io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to seek to filename: %w", err)
		}
	}

	km, err := c.keys.Recover(header, trailer, password)
	if err != nil {
		return nil, err
	}
	engine, err := NewCipherEngine(header.Scheme, km.Keys)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher engine: %w", err)
	}

	name := make([]byte, header.FilenameSize())
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, newMalformed(header.Size(), ErrTruncated, fmt.Sprintf("failed to read filename: %v", err))
	}
	engine.Decrypt(name, name)

	size := total - int64(header.Overhead())
	return &Decoder{
		header: header,
		name:   string(name),
		size:   size,
		src:    io.LimitReader(r, size),
		engine: engine,
		buf:    config.alignedBuffer(engine.BlockWidth()),
	}, nil
}

// Header returns the parsed container header
func (d *Decoder) Header() *Header {
	return d.header
}

// Name returns the embedded filename
func (d *Decoder) Name() string {
	return d.name
}

// Size returns the payload size in bytes
func (d *Decoder) Size() int64 {
	return d.size
}

// Read reads decoded payload bytes
func (d *Decoder) Read(p []byte) (int, error) {
	if len(d.out) == 0 {
		if err := d.fill(); err != nil {
			return 0, err
		}
	}
	n := copy(p, d.out)
	d.out = d.out[n:]
	return n, nil
}

func (d *Decoder) fill() error {
	if d.eof {
		return io.EOF
	}
	n, err := io.ReadFull(d.src, d.buf)
	switch {
	case err == io.EOF:
		d.eof = true
		return io.EOF
	case err == io.ErrUnexpectedEOF:
		// Final, possibly short, block.
		d.eof = true
	case err != nil:
		return fmt.Errorf("failed to read payload: %w", err)
	}
	d.engine.Decrypt(d.buf[:n], d.buf[:n])
	d.out = d.buf[:n]
	return nil
}
