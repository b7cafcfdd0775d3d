package leafpack

import (
	"fmt"
	"io"
	"os"
)

// RepackOptions controls how a container is re-encoded
type RepackOptions struct {
	// NewPassword protects the new container. Nil produces an unprotected
	// container.
	NewPassword *string

	// Scheme of the new container. Zero keeps the source container's scheme.
	Scheme CipherScheme
}

// Repack decodes container (asking passwords if it is protected) and encodes
// the recovered file again with fresh key material. The filename and payload
// are carried over unchanged.
func (c *Codec) Repack(container []byte, passwords PasswordProvider, opts RepackOptions) ([]byte, error) {
	header, err := ParseHeader(container)
	if err != nil {
		return nil, err
	}

	name, payload, err := c.Decode(container, passwords)
	if err != nil {
		return nil, err
	}

	scheme := opts.Scheme
	if scheme == 0 {
		scheme = header.Scheme
	}
	if err := ValidateScheme(scheme); err != nil {
		return nil, err
	}

	return c.encodeAs(scheme, payload, name, opts.NewPassword)
}

// Rekey re-encodes the container name in place with new key material
func (p *Packer) Rekey(name string, passwords PasswordProvider, opts RepackOptions) error {
	data, err := p.readFile(name)
	if err != nil {
		return err
	}

	repacked, err := p.codec.Repack(data, passwords, opts)
	if err != nil {
		return withPath(err, name)
	}

	// Rekeying always replaces the source container.
	rp := *p
	rp.opts.Overwrite = true
	err = rp.writeFile(name, func(w io.Writer) error {
		_, err := w.Write(repacked)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write rekeyed container: %w", err)
	}
	return nil
}

// Verify checks that the container name decodes successfully and returns the
// embedded filename and payload size. Nothing is written.
func (p *Packer) Verify(name string, passwords PasswordProvider) (string, int64, error) {
	if err := ValidateFilePath(name); err != nil {
		return "", 0, err
	}
	in, err := p.base.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return "", 0, NewIOError("open", name, err)
	}
	defer in.Close()

	dec, err := p.codec.NewDecoder(in, passwords, p.opts.Streaming)
	if err != nil {
		return "", 0, withPath(err, name)
	}
	n, err := io.Copy(io.Discard, sourceReader{r: dec, path: name})
	if err != nil {
		return "", 0, err
	}
	return dec.Name(), n, nil
}
