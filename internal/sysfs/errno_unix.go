//go:build unix

package sysfs

import "golang.org/x/sys/unix"

// Kernel causes the sysfs control files report.
var (
	errBusy         error = unix.EBUSY
	errInvalid      error = unix.EINVAL
	errNotPermitted error = unix.EPERM
)
