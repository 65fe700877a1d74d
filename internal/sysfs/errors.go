package sysfs

import (
	"errors"
	"fmt"
)

// Causes carried by PinError when the caller sequenced operations wrongly.
var (
	ErrNotReserved      = errors.New("pin not reserved")
	ErrNotOutput        = errors.New("pin not configured as output")
	ErrDirectionFixed   = errors.New("direction is fixed until the pin is released")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrExportTimeout    = errors.New("pin directory did not appear after export")
)

// PinError records a failed pin operation and the control file involved.
type PinError struct {
	Op   string // "export", "set direction", "set value", "get value", "unexport"
	Pin  uint
	Path string // control file, empty when no file was touched
	Err  error
}

func (e *PinError) Error() string {
	what := e.Op + " of"
	if e.Op == "export" || e.Op == "unexport" {
		what = e.Op
	}
	if e.Path == "" {
		return fmt.Sprintf("failed to %s GPIO pin #%d: %v", what, e.Pin, e.Err)
	}
	return fmt.Sprintf("failed to %s GPIO pin #%d (%s): %v", what, e.Pin, e.Path, e.Err)
}

func (e *PinError) Unwrap() error { return e.Err }

// Busy reports whether the kernel refused the operation because the pin is
// held elsewhere, typically another process exported it first.
func (e *PinError) Busy() bool {
	return errors.Is(e.Err, errBusy)
}

// Invalid reports whether the kernel rejected the written value, e.g. a pin
// number the board does not have.
func (e *PinError) Invalid() bool {
	return errors.Is(e.Err, errInvalid)
}

func wrapPinError(op string, n uint, path string, err error) error {
	return &PinError{Op: op, Pin: n, Path: path, Err: err}
}
