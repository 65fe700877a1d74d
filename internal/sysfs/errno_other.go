//go:build !unix

package sysfs

import "errors"

// There is no sysfs here; these only back FakeKernel.
var (
	errBusy         = errors.New("device or resource busy")
	errInvalid      = errors.New("invalid argument")
	errNotPermitted = errors.New("operation not permitted")
)
