package leafpack

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/absfs/absfs"
	"github.com/google/uuid"
)

const (
	// ContainerExt is the extension of packed files
	ContainerExt = ".lpk"

	// packedSuffix is appended to the stem of a packed file's name
	packedSuffix = "_packed"
)

// PackerOptions controls how a Packer writes its outputs
type PackerOptions struct {
	// Overwrite replaces existing output files instead of failing with
	// ErrOutputExists
	Overwrite bool

	// Parallel controls PackAll
	Parallel ParallelConfig

	// Perm is the permission of created files. Defaults to 0644.
	Perm os.FileMode

	// Streaming sets the buffer used while packing and unpacking
	Streaming StreamingConfig
}

// Packer packs and unpacks files stored on an absfs.FileSystem. Files are
// streamed through the codec into a uniquely named staging file that is
// renamed into place, so a failed pack or unpack leaves no partial output
// behind.
type Packer struct {
	base  absfs.FileSystem
	codec *Codec
	opts  PackerOptions
	sep   string
}

// NewPacker creates a packer over base. A nil codec uses the default codec; a
// nil opts uses zero options with DefaultParallelConfig().
func NewPacker(base absfs.FileSystem, codec *Codec, opts *PackerOptions) (*Packer, error) {
	if base == nil {
		return nil, fmt.Errorf("base filesystem cannot be nil")
	}
	if codec == nil {
		codec = defaultCodec()
	}

	var o PackerOptions
	if opts != nil {
		o = *opts
	} else {
		o.Parallel = DefaultParallelConfig()
	}
	if o.Perm == 0 {
		o.Perm = 0644
	}
	if o.Streaming.BufferSize == 0 {
		o.Streaming = DefaultStreamingConfig()
	}
	if err := o.Parallel.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parallel config: %w", err)
	}
	if err := o.Streaming.Validate(); err != nil {
		return nil, fmt.Errorf("invalid streaming config: %w", err)
	}

	return &Packer{
		base:  base,
		codec: codec,
		opts:  o,
		sep:   string([]byte{base.Separator()}),
	}, nil
}

// Codec returns the codec used by the packer
func (p *Packer) Codec() *Codec {
	return p.codec
}

// OutputName returns the container name for src: its base name with the last
// extension replaced by "_packed.lpk".
func OutputName(src string, sep byte) string {
	name := baseName(src, sep)
	if dot := strings.LastIndexByte(name, '.'); dot > 0 {
		name = name[:dot]
	}
	return name + packedSuffix + ContainerExt
}

// IsContainerName reports whether name carries the container extension
func IsContainerName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ContainerExt)
}

// PackFile packs src into dstDir without a password and returns the path of
// the new container. An empty dstDir writes next to src. Only the base name
// of src is embedded.
func (p *Packer) PackFile(src, dstDir string) (string, error) {
	return p.pack(src, dstDir, nil)
}

// PackFileWithPassword packs src into dstDir under password
func (p *Packer) PackFileWithPassword(src, dstDir, password string) (string, error) {
	return p.pack(src, dstDir, &password)
}

func (p *Packer) pack(src, dstDir string, password *string) (string, error) {
	if err := ValidateFilePath(src); err != nil {
		return "", err
	}
	name := baseName(src, p.base.Separator())
	if err := ValidateFilename(name); err != nil {
		return "", withPath(err, src)
	}

	in, err := p.base.OpenFile(src, os.O_RDONLY, 0)
	if err != nil {
		return "", NewIOError("open", src, err)
	}
	defer in.Close()

	if dstDir == "" {
		dstDir = dirName(src, p.base.Separator())
	}
	dst := p.join(dstDir, OutputName(src, p.base.Separator()))

	err = p.writeFile(dst, func(w io.Writer) error {
		enc, err := p.codec.NewEncoder(w, name, password, p.opts.Streaming)
		if err != nil {
			return withPath(err, src)
		}
		if _, err := io.Copy(enc, sourceReader{r: in, path: src}); err != nil {
			return err
		}
		return enc.Close()
	})
	if err != nil {
		return "", err
	}
	return dst, nil
}

// UnpackFile decodes the container src and writes the recovered file into
// dstDir under its embedded name. It returns the path written. The password
// is checked before any output is created.
func (p *Packer) UnpackFile(src, dstDir string, passwords PasswordProvider) (string, error) {
	if err := ValidateFilePath(src); err != nil {
		return "", err
	}
	in, err := p.base.OpenFile(src, os.O_RDONLY, 0)
	if err != nil {
		return "", NewIOError("open", src, err)
	}
	defer in.Close()

	dec, err := p.codec.NewDecoder(in, passwords, p.opts.Streaming)
	if err != nil {
		return "", withPath(err, src)
	}
	if err := ValidateEmbeddedName(dec.Name()); err != nil {
		return "", withPath(err, src)
	}

	if dstDir == "" {
		dstDir = dirName(src, p.base.Separator())
	}
	dst := p.join(dstDir, dec.Name())
	err = p.writeFile(dst, func(w io.Writer) error {
		_, err := io.Copy(w, sourceReader{r: dec, path: src})
		return err
	})
	if err != nil {
		return "", err
	}
	return dst, nil
}

// Inspect reports the layout of the container src
func (p *Packer) Inspect(src string) (*Info, error) {
	data, err := p.readFile(src)
	if err != nil {
		return nil, err
	}
	info, err := Inspect(data)
	if err != nil {
		return nil, withPath(err, src)
	}
	return info, nil
}

func (p *Packer) readFile(name string) ([]byte, error) {
	if err := ValidateFilePath(name); err != nil {
		return nil, err
	}
	f, err := p.base.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, NewIOError("open", name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, NewIOError("read", name, err)
	}
	return data, nil
}

// writeFile streams write into a staging file next to name and renames it
// into place. The staging file is removed if write fails or panics.
func (p *Packer) writeFile(name string, write func(io.Writer) error) error {
	exists := false
	if _, err := p.base.Stat(name); err == nil {
		exists = true
		if !p.opts.Overwrite {
			return &IOError{
				Operation: "create",
				Path:      name,
				Message:   ErrOutputExists.Error(),
				Err:       ErrOutputExists,
			}
		}
	}

	tmp := name + "." + uuid.NewString() + ".tmp"
	f, err := p.base.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, p.opts.Perm)
	if err != nil {
		return NewIOError("create", tmp, err)
	}

	closed, committed := false, false
	defer func() {
		if !closed {
			f.Close()
		}
		if !committed {
			p.base.Remove(tmp)
		}
	}()

	if err := write(f); err != nil {
		if IsIOError(err) || IsMalformed(err) || IsPasswordRejected(err) {
			return err
		}
		return NewIOError("write", tmp, err)
	}
	closed = true
	if err := f.Close(); err != nil {
		return NewIOError("close", tmp, err)
	}

	if err := p.base.Rename(tmp, name); err != nil {
		if !exists {
			return NewIOError("rename", name, err)
		}
		// Some filesystems refuse to rename over an existing file.
		if rmErr := p.base.Remove(name); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return NewIOError("remove", name, rmErr)
		}
		if err := p.base.Rename(tmp, name); err != nil {
			return NewIOError("rename", name, err)
		}
	}
	committed = true
	return nil
}

// sourceReader reports read failures as IOErrors naming path
type sourceReader struct {
	r    io.Reader
	path string
}

func (s sourceReader) Read(b []byte) (int, error) {
	n, err := s.r.Read(b)
	if err != nil && err != io.EOF {
		err = NewIOError("read", s.path, err)
	}
	return n, err
}

func (p *Packer) join(dir, name string) string {
	if dir == "" {
		return name
	}
	return strings.TrimRight(dir, p.sep) + p.sep + name
}

func baseName(path string, sep byte) string {
	path = strings.TrimRight(path, string(sep))
	if i := strings.LastIndexByte(path, sep); i >= 0 {
		return path[i+1:]
	}
	return path
}

func dirName(path string, sep byte) string {
	i := strings.LastIndexByte(path, sep)
	switch {
	case i < 0:
		return ""
	case i == 0:
		return string(sep)
	default:
		return path[:i]
	}
}
