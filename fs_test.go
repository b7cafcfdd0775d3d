package leafpack

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/absfs/absfs"
	"github.com/absfs/memfs"
)

// setupTestFS returns an absfs view of a fresh temporary directory
func setupTestFS(tb testing.TB) (*osTestFS, func()) {
	tb.Helper()

	tmpDir, err := os.MkdirTemp("", "leafpack-test-*")
	if err != nil {
		tb.Fatalf("failed to create temp dir: %v", err)
	}

	cleanup := func() {
		os.RemoveAll(tmpDir)
	}

	return &osTestFS{root: tmpDir}, cleanup
}

// setupMemFS returns an in-memory filesystem
func setupMemFS(tb testing.TB) absfs.FileSystem {
	tb.Helper()

	fs, err := memfs.NewFS()
	if err != nil {
		tb.Fatalf("failed to create memfs: %v", err)
	}
	return fs
}

// osTestFS is a minimal filesystem rooted at a host directory
type osTestFS struct {
	root string
	cwd  string
}

func (fs *osTestFS) OpenFile(name string, flag int, perm os.FileMode) (absfs.File, error) {
	path := filepath.Join(fs.root, name)
	if flag&os.O_CREATE != 0 {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, flag, perm)
}

func (fs *osTestFS) Mkdir(name string, perm os.FileMode) error {
	return os.Mkdir(filepath.Join(fs.root, name), perm)
}

func (fs *osTestFS) MkdirAll(name string, perm os.FileMode) error {
	return os.MkdirAll(filepath.Join(fs.root, name), perm)
}

func (fs *osTestFS) Remove(name string) error {
	return os.Remove(filepath.Join(fs.root, name))
}

func (fs *osTestFS) RemoveAll(path string) error {
	return os.RemoveAll(filepath.Join(fs.root, path))
}

func (fs *osTestFS) Rename(oldpath, newpath string) error {
	return os.Rename(filepath.Join(fs.root, oldpath), filepath.Join(fs.root, newpath))
}

func (fs *osTestFS) Stat(name string) (os.FileInfo, error) {
	return os.Stat(filepath.Join(fs.root, name))
}

func (fs *osTestFS) Chmod(name string, mode os.FileMode) error {
	return os.Chmod(filepath.Join(fs.root, name), mode)
}

func (fs *osTestFS) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(filepath.Join(fs.root, name), atime, mtime)
}

func (fs *osTestFS) Chown(name string, uid, gid int) error {
	return os.Chown(filepath.Join(fs.root, name), uid, gid)
}

func (fs *osTestFS) Separator() uint8 {
	return os.PathSeparator
}

func (fs *osTestFS) ListSeparator() uint8 {
	return os.PathListSeparator
}

func (fs *osTestFS) Chdir(dir string) error {
	fs.cwd = dir
	return nil
}

func (fs *osTestFS) Getwd() (string, error) {
	if fs.cwd == "" {
		return "/", nil
	}
	return fs.cwd, nil
}

func (fs *osTestFS) TempDir() string {
	return os.TempDir()
}

func (fs *osTestFS) Open(name string) (absfs.File, error) {
	return fs.OpenFile(name, os.O_RDONLY, 0)
}

func (fs *osTestFS) Create(name string) (absfs.File, error) {
	return fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

func (fs *osTestFS) Truncate(name string, size int64) error {
	return os.Truncate(filepath.Join(fs.root, name), size)
}

// entries lists the names in a directory of the host tree
func (fs *osTestFS) entries(tb testing.TB, dir string) []string {
	tb.Helper()
	list, err := os.ReadDir(filepath.Join(fs.root, dir))
	if err != nil {
		tb.Fatalf("ReadDir(%q) failed: %v", dir, err)
	}
	names := make([]string, len(list))
	for i, e := range list {
		names[i] = e.Name()
	}
	return names
}

func writeTestFile(tb testing.TB, fs absfs.FileSystem, name string, data []byte) {
	tb.Helper()
	f, err := fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		tb.Fatalf("failed to create %q: %v", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		tb.Fatalf("failed to write %q: %v", name, err)
	}
	if err := f.Close(); err != nil {
		tb.Fatalf("failed to close %q: %v", name, err)
	}
}

func readTestFile(tb testing.TB, fs absfs.FileSystem, name string) []byte {
	tb.Helper()
	f, err := fs.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		tb.Fatalf("failed to open %q: %v", name, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		tb.Fatalf("failed to read %q: %v", name, err)
	}
	return data
}
