package sysfs

import (
	"sync"
	"time"
)

// Pin is a reserved pin with a fixed direction, returned by Controller.Open.
type Pin struct {
	c   *Controller
	n   uint
	dir Direction

	once sync.Once
	err  error
}

// Number returns the hardware pin number.
func (p *Pin) Number() uint { return p.n }

// Direction returns the direction the pin was opened with.
func (p *Pin) Direction() Direction { return p.dir }

// Read returns the pin level, low on any failure.
func (p *Pin) Read() bool { return p.c.Read(p.n) }

// Value returns the pin level or the read failure.
func (p *Pin) Value() (bool, error) { return p.c.Value(p.n) }

// Write drives the pin. It fails unless the pin is an output.
func (p *Pin) Write(v bool) error { return p.c.Write(p.n, v) }

// High drives the pin high.
func (p *Pin) High() error { return p.c.Write(p.n, true) }

// Low drives the pin low.
func (p *Pin) Low() error { return p.c.Write(p.n, false) }

// Blink drives the pin high then low, holding each level for delay.
func (p *Pin) Blink(delay time.Duration) error { return p.c.Blink(p.n, delay) }

// Close releases the pin. Only the first call touches sysfs; later calls
// return the first result.
func (p *Pin) Close() error {
	p.once.Do(func() {
		p.err = p.c.Release(p.n, p.dir)
	})
	return p.err
}
