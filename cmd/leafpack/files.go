package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/absfs/leafpack"
	"github.com/natefinch/atomic"
)

// outputPath places name in the configured output directory, or next to src
func (a *app) outputPath(src, name string) string {
	dir := a.v.GetString("out-dir")
	if dir == "" {
		dir = filepath.Dir(src)
	}
	return filepath.Join(dir, name)
}

// prepareOutput refuses to replace dst unless --force is set and creates its
// directory
func (a *app) prepareOutput(dst string) error {
	if _, err := os.Stat(dst); err == nil && !a.v.GetBool("force") {
		return &leafpack.IOError{
			Operation: "create",
			Path:      dst,
			Message:   "output file already exists (use --force to overwrite)",
			Err:       leafpack.ErrOutputExists,
		}
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return leafpack.NewIOError("mkdir", filepath.Dir(dst), err)
	}
	return nil
}

// packFile streams src into a new container and returns its path and size
func (a *app) packFile(src string, password *string) (string, int64, error) {
	name := filepath.Base(src)
	if err := leafpack.ValidateFilename(name); err != nil {
		return "", 0, err
	}

	in, err := os.Open(src)
	if err != nil {
		return "", 0, leafpack.NewIOError("open", src, err)
	}
	defer in.Close()

	dst := a.outputPath(src, leafpack.OutputName(src, os.PathSeparator))
	if err := a.prepareOutput(dst); err != nil {
		return "", 0, err
	}

	pr, pw := io.Pipe()
	var written int64
	go func() {
		enc, err := a.codec.NewEncoder(pw, name, password, leafpack.DefaultStreamingConfig())
		if err == nil {
			if _, err = io.Copy(enc, in); err == nil {
				err = enc.Close()
			}
			written = enc.Written()
		}
		pw.CloseWithError(err)
	}()

	if err := atomic.WriteFile(dst, pr); err != nil {
		pr.CloseWithError(err)
		return "", 0, leafpack.NewIOError("write", dst, err)
	}
	return dst, written, nil
}

// unpackFile restores the file held by the container src
func (a *app) unpackFile(src string) (string, int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", 0, leafpack.NewIOError("open", src, err)
	}
	defer in.Close()

	dec, err := a.codec.NewDecoder(in, a.passwords(), leafpack.DefaultStreamingConfig())
	if err != nil {
		return "", 0, err
	}
	if err := leafpack.ValidateEmbeddedName(dec.Name()); err != nil {
		return "", 0, err
	}

	dst := a.outputPath(src, dec.Name())
	if err := a.prepareOutput(dst); err != nil {
		return "", 0, err
	}
	if err := atomic.WriteFile(dst, dec); err != nil {
		return "", 0, leafpack.NewIOError("write", dst, err)
	}
	return dst, dec.Size(), nil
}

// rekeyFile replaces the container src with a re-encoded copy
func (a *app) rekeyFile(src string, opts leafpack.RepackOptions) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return leafpack.NewIOError("read", src, err)
	}
	out, err := a.codec.Repack(data, a.passwords(), opts)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(src, bytes.NewReader(out)); err != nil {
		return leafpack.NewIOError("write", src, err)
	}
	return nil
}

func (a *app) inspectFile(src string) (*leafpack.Info, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, leafpack.NewIOError("read", src, err)
	}
	info, err := leafpack.Inspect(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	return info, nil
}
