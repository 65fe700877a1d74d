package sysfs

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// Write is one write observed by FakeKernel, in the order it reached the
// kernel. Path is relative to the root, e.g. "export" or "gpio17/value".
type Write struct {
	Path string
	Data string
	Err  error
}

// FakeKernel is an in-memory stand-in for the GPIO sysfs tree. Writes to
// export and unexport create and remove gpio<N> directories the way the
// kernel does, and every write is logged.
type FakeKernel struct {
	mem  afero.Fs
	root string

	mu       sync.Mutex
	writes   []Write
	rejected map[uint]error
}

// NewFakeKernel returns a fake sysfs tree rooted at DefaultRoot with no
// pins exported.
func NewFakeKernel() *FakeKernel {
	k := &FakeKernel{
		mem:      afero.NewMemMapFs(),
		root:     DefaultRoot,
		rejected: make(map[uint]error),
	}
	k.mem.MkdirAll(k.root, 0755)
	afero.WriteFile(k.mem, filepath.Join(k.root, "export"), nil, 0200)
	afero.WriteFile(k.mem, filepath.Join(k.root, "unexport"), nil, 0200)
	return k
}

// Fs returns the filesystem to hand to WithFs.
func (k *FakeKernel) Fs() afero.Fs {
	return &kernelFs{Fs: k.mem, k: k}
}

// Root returns the directory holding export and unexport.
func (k *FakeKernel) Root() string { return k.root }

// Controller returns a Controller wired to this fake.
func (k *FakeKernel) Controller(opts ...Option) *Controller {
	return NewController(append([]Option{WithFs(k.Fs()), WithRoot(k.root)}, opts...)...)
}

// Reject makes future exports of pin n fail with err.
func (k *FakeKernel) Reject(n uint, err error) {
	k.mu.Lock()
	k.rejected[n] = err
	k.mu.Unlock()
}

// Exported reports whether gpio<n> exists.
func (k *FakeKernel) Exported(n uint) bool {
	ok, _ := afero.DirExists(k.mem, k.pinDir(n))
	return ok
}

// SetValue overwrites the raw contents of gpio<n>/value, bypassing the
// write log. It is how tests drive input levels.
func (k *FakeKernel) SetValue(n uint, raw string) error {
	return afero.WriteFile(k.mem, filepath.Join(k.pinDir(n), "value"), []byte(raw), 0644)
}

// RemoveValue deletes gpio<n>/value so reads of it fail.
func (k *FakeKernel) RemoveValue(n uint) error {
	return k.mem.Remove(filepath.Join(k.pinDir(n), "value"))
}

// Value returns the trimmed contents of gpio<n>/value, empty if missing.
func (k *FakeKernel) Value(n uint) string {
	return k.attr(n, "value")
}

// Direction returns the trimmed contents of gpio<n>/direction.
func (k *FakeKernel) Direction(n uint) string {
	return k.attr(n, "direction")
}

// Writes returns a copy of the write log.
func (k *FakeKernel) Writes() []Write {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]Write(nil), k.writes...)
}

// ResetWrites clears the write log.
func (k *FakeKernel) ResetWrites() {
	k.mu.Lock()
	k.writes = nil
	k.mu.Unlock()
}

func (k *FakeKernel) pinDir(n uint) string {
	return filepath.Join(k.root, "gpio"+strconv.FormatUint(uint64(n), 10))
}

func (k *FakeKernel) attr(n uint, name string) string {
	buf, err := afero.ReadFile(k.mem, filepath.Join(k.pinDir(n), name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(buf))
}

// commit applies a completed write the way the GPIO sysfs driver would.
func (k *FakeKernel) commit(name string, data []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	rel, err := filepath.Rel(k.root, name)
	if err != nil {
		rel = name
	}
	err = k.apply(rel, strings.TrimSpace(string(data)))
	k.writes = append(k.writes, Write{Path: rel, Data: string(data), Err: err})
	if err != nil {
		return &os.PathError{Op: "write", Path: name, Err: err}
	}
	return nil
}

func (k *FakeKernel) apply(rel, token string) error {
	switch rel {
	case "export":
		n, err := strconv.ParseUint(token, 10, 32)
		if err != nil {
			return errInvalid
		}
		if err := k.rejected[uint(n)]; err != nil {
			return err
		}
		dir := k.pinDir(uint(n))
		if ok, _ := afero.DirExists(k.mem, dir); ok {
			return errBusy
		}
		if err := k.mem.MkdirAll(dir, 0755); err != nil {
			return err
		}
		if err := afero.WriteFile(k.mem, filepath.Join(dir, "direction"), []byte("in\n"), 0644); err != nil {
			return err
		}
		return afero.WriteFile(k.mem, filepath.Join(dir, "value"), []byte("0\n"), 0644)

	case "unexport":
		n, err := strconv.ParseUint(token, 10, 32)
		if err != nil {
			return errInvalid
		}
		dir := k.pinDir(uint(n))
		if ok, _ := afero.DirExists(k.mem, dir); !ok {
			return errInvalid
		}
		return k.mem.RemoveAll(dir)
	}

	dir, attr := filepath.Split(rel)
	dir = filepath.Join(k.root, dir)
	switch attr {
	case "direction":
		var dirTok, value string
		switch token {
		case "in", "out":
			dirTok = token
		case "low":
			dirTok, value = "out", "0"
		case "high":
			dirTok, value = "out", "1"
		default:
			return errInvalid
		}
		if value != "" {
			if err := afero.WriteFile(k.mem, filepath.Join(dir, "value"), []byte(value+"\n"), 0644); err != nil {
				return err
			}
		}
		return afero.WriteFile(k.mem, filepath.Join(dir, "direction"), []byte(dirTok+"\n"), 0644)

	case "value":
		cur, err := afero.ReadFile(k.mem, filepath.Join(dir, "direction"))
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(cur)) != "out" {
			return errNotPermitted
		}
		v, err := strconv.Atoi(token)
		if err != nil {
			return errInvalid
		}
		value := "0\n"
		if v != 0 {
			value = "1\n"
		}
		return afero.WriteFile(k.mem, filepath.Join(dir, "value"), []byte(value), 0644)
	}

	return afero.WriteFile(k.mem, filepath.Join(k.root, rel), []byte(token+"\n"), 0644)
}

// kernelFs routes writable opens through kernelFile.
type kernelFs struct {
	afero.Fs
	k *FakeKernel
}

func (fs *kernelFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR) == 0 {
		return fs.Fs.OpenFile(name, flag, perm)
	}
	// Attribute contents only change through commit.
	f, err := fs.Fs.OpenFile(name, flag&^os.O_TRUNC, perm)
	if err != nil {
		return nil, err
	}
	return &kernelFile{File: f, k: fs.k, name: filepath.Clean(name)}, nil
}

// kernelFile buffers writes and hands them to the kernel on Close, the
// point where a sysfs store would have completed.
type kernelFile struct {
	afero.File
	k    *FakeKernel
	name string
	buf  bytes.Buffer
}

func (f *kernelFile) Write(p []byte) (int, error) {
	return f.buf.Write(p)
}

func (f *kernelFile) WriteString(s string) (int, error) {
	return f.buf.WriteString(s)
}

func (f *kernelFile) Close() error {
	if err := f.File.Close(); err != nil {
		return err
	}
	return f.k.commit(f.name, f.buf.Bytes())
}
