//go:build !linux

package gpio

import (
	"errors"
	"time"
)

// CdevBoard is not available on non-Linux platforms.
type CdevBoard struct{}

// NewCdevBoard returns an error on non-Linux platforms.
func NewCdevBoard(chipName string, pins Pins) (*CdevBoard, error) {
	return nil, errors.New("gpio: character device not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (b *CdevBoard) Read() (bool, bool, error) {
	return false, false, errors.New("gpio: not supported")
}

// Set is not implemented on non-Linux platforms.
func (b *CdevBoard) Set(on bool) error {
	return errors.New("gpio: not supported")
}

// Blink is not implemented on non-Linux platforms.
func (b *CdevBoard) Blink(delay time.Duration) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (b *CdevBoard) Close() error {
	return nil
}
