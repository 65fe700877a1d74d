package sysfs

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// DefaultRoot is where the kernel exposes the GPIO sysfs interface.
const DefaultRoot = "/sys/class/gpio"

// Direction is the IO direction of a pin, written verbatim to the
// direction control file.
type Direction string

// Available directions.
const (
	In  Direction = "in"
	Out Direction = "out"
)

// Valid reports whether d is In or Out.
func (d Direction) Valid() bool {
	return d == In || d == Out
}

// The kernel creates gpio<N> asynchronously after export.
const (
	exportPolls    = 10
	exportPollWait = 10 * time.Millisecond
)

var (
	bytesHigh = []byte{'1'}
	bytesLow  = []byte{'0'}
)

type pinState struct {
	dir Direction // empty until SetDirection succeeds
}

// Controller translates pin operations into the sysfs text protocol and
// tracks which pins it has reserved.
type Controller struct {
	fs     afero.Fs
	root   string
	sleep  func(time.Duration)
	logger *log.Logger

	mu   sync.Mutex
	pins map[uint]*pinState
}

// Option configures a Controller.
type Option func(*Controller)

// WithFs sets the filesystem the control files live on.
func WithFs(fs afero.Fs) Option {
	return func(c *Controller) { c.fs = fs }
}

// WithRoot sets the directory holding export, unexport and gpio<N>.
func WithRoot(root string) Option {
	return func(c *Controller) { c.root = root }
}

// WithSleep replaces time.Sleep for Blink and the export settle wait.
func WithSleep(sleep func(time.Duration)) Option {
	return func(c *Controller) { c.sleep = sleep }
}

// WithLogger enables lifecycle logging.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController returns a Controller for the real sysfs tree unless
// options say otherwise.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		fs:     afero.NewOsFs(),
		root:   DefaultRoot,
		sleep:  time.Sleep,
		logger: log.New(io.Discard, "", 0),
		pins:   make(map[uint]*pinState),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) pinDir(n uint) string {
	return filepath.Join(c.root, "gpio"+strconv.FormatUint(uint64(n), 10))
}

func (c *Controller) directionPath(n uint) string {
	return filepath.Join(c.pinDir(n), "direction")
}

func (c *Controller) valuePath(n uint) string {
	return filepath.Join(c.pinDir(n), "value")
}

// Reserve exports pin n. Reserving a pin this controller already holds is
// a no-op.
func (c *Controller) Reserve(n uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.pins[n]; ok {
		return nil
	}

	num := []byte(strconv.FormatUint(uint64(n), 10))
	path := filepath.Join(c.root, "export")
	if err := c.writeExisting(path, num); err != nil {
		return wrapPinError("export", n, path, err)
	}
	if err := c.waitExported(n); err != nil {
		// The export write went through, so hand the pin back.
		path = filepath.Join(c.root, "unexport")
		if uerr := c.writeExisting(path, num); uerr != nil {
			return errors.Join(err, wrapPinError("unexport", n, path, uerr))
		}
		return err
	}

	c.pins[n] = &pinState{}
	c.logger.Printf("sysfs: exported pin %d", n)
	return nil
}

func (c *Controller) waitExported(n uint) error {
	dir := c.pinDir(n)
	for i := 0; ; i++ {
		ok, err := afero.DirExists(c.fs, dir)
		if err != nil {
			return wrapPinError("export", n, dir, err)
		}
		if ok {
			return nil
		}
		if i == exportPolls {
			return wrapPinError("export", n, dir, ErrExportTimeout)
		}
		c.sleep(exportPollWait)
	}
}

// SetDirection configures pin n as input or output. The direction cannot
// change while the pin stays reserved.
func (c *Controller) SetDirection(n uint, d Direction) error {
	if !d.Valid() {
		return wrapPinError("set direction", n, "", fmt.Errorf("%w %q", ErrInvalidDirection, d))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.pins[n]
	if !ok {
		return wrapPinError("set direction", n, "", ErrNotReserved)
	}
	if st.dir != "" && st.dir != d {
		return wrapPinError("set direction", n, "", fmt.Errorf("%w: pin is %q", ErrDirectionFixed, st.dir))
	}

	path := c.directionPath(n)
	if err := c.writeExisting(path, []byte(d)); err != nil {
		return wrapPinError("set direction", n, path, err)
	}
	st.dir = d
	return nil
}

// Write drives output pin n high (true) or low (false).
func (c *Controller) Write(n uint, v bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(n, v)
}

func (c *Controller) write(n uint, v bool) error {
	st, ok := c.pins[n]
	if !ok {
		return wrapPinError("set value", n, "", ErrNotReserved)
	}
	if st.dir != Out {
		return wrapPinError("set value", n, "", ErrNotOutput)
	}

	buf := bytesLow
	if v {
		buf = bytesHigh
	}
	path := c.valuePath(n)
	if err := c.writeExisting(path, buf); err != nil {
		return wrapPinError("set value", n, path, err)
	}
	return nil
}

// Read returns the level of pin n. Anything but a leading '1' in the value
// file, including a read failure or an unreserved pin, reads as low.
func (c *Controller) Read(n uint) bool {
	v, _ := c.Value(n)
	return v
}

// Value is Read with the failure reported instead of folded into low.
func (c *Controller) Value(n uint) (bool, error) {
	c.mu.Lock()
	_, ok := c.pins[n]
	c.mu.Unlock()
	if !ok {
		return false, wrapPinError("get value", n, "", ErrNotReserved)
	}

	path := c.valuePath(n)
	buf, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return false, wrapPinError("get value", n, path, err)
	}
	return len(buf) > 0 && buf[0] == '1', nil
}

// Release unexports pin n. Output pins, whether named so by d or by an
// earlier SetDirection, are driven low first; if that write fails the pin
// stays reserved.
func (c *Controller) Release(n uint, d Direction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.release(n, d)
}

func (c *Controller) release(n uint, d Direction) error {
	st, ok := c.pins[n]
	if !ok {
		return wrapPinError("unexport", n, "", ErrNotReserved)
	}

	if d == Out || st.dir == Out {
		if err := c.write(n, false); err != nil {
			return err
		}
	}

	path := filepath.Join(c.root, "unexport")
	if err := c.writeExisting(path, []byte(strconv.FormatUint(uint64(n), 10))); err != nil {
		return wrapPinError("unexport", n, path, err)
	}

	delete(c.pins, n)
	c.logger.Printf("sysfs: unexported pin %d", n)
	return nil
}

// Blink drives pin n high for delay, then low for delay, on the calling
// goroutine.
func (c *Controller) Blink(n uint, delay time.Duration) error {
	if err := c.Write(n, true); err != nil {
		return err
	}
	c.sleep(delay)
	if err := c.Write(n, false); err != nil {
		return err
	}
	c.sleep(delay)
	return nil
}

// Open reserves pin n and sets its direction. If the direction cannot be
// set the pin is released again.
func (c *Controller) Open(n uint, d Direction) (*Pin, error) {
	if err := c.Reserve(n); err != nil {
		return nil, err
	}
	if err := c.SetDirection(n, d); err != nil {
		if rerr := c.Release(n, In); rerr != nil {
			return nil, errors.Join(err, rerr)
		}
		return nil, err
	}
	return &Pin{c: c, n: n, dir: d}, nil
}

// Reserved returns the reserved pin numbers in ascending order.
func (c *Controller) Reserved() []uint {
	c.mu.Lock()
	defer c.mu.Unlock()

	pins := make([]uint, 0, len(c.pins))
	for n := range c.pins {
		pins = append(pins, n)
	}
	sort.Slice(pins, func(i, j int) bool { return pins[i] < pins[j] })
	return pins
}

// Close releases every pin still reserved, outputs first driven low.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	pins := make([]uint, 0, len(c.pins))
	for n := range c.pins {
		pins = append(pins, n)
	}
	sort.Slice(pins, func(i, j int) bool { return pins[i] < pins[j] })

	var errs []error
	for _, n := range pins {
		if err := c.release(n, c.pins[n].dir); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// writeExisting never creates path: a missing control file means the pin
// or the interface is absent.
func (c *Controller) writeExisting(path string, buf []byte) error {
	f, err := c.fs.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	if _, err := f.Write(buf); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
