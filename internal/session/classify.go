package session

import (
	"errors"
	"strings"
	"syscall"
)

// permanentErrnos are open failures that retrying cannot fix: the device is
// locked by another process, we lack permission, or it has been removed.
var permanentErrnos = []syscall.Errno{
	syscall.EACCES,
	syscall.EPERM,
	syscall.EBUSY,
	syscall.ENOENT,
	syscall.ENODEV,
	syscall.ENXIO,
}

// permanentMarkers catches transports that surface failures as opaque
// strings rather than wrapped errnos.
var permanentMarkers = []string{
	"permission denied",
	"access denied",
	"resource busy",
	"exclusively locked",
	"no such device",
	"no such file",
	"device not configured",
}

// IsPermanentFailure reports whether an open failure should stop the
// reconnect loop. Anything unmatched is treated as transient and retried.
func IsPermanentFailure(err error) bool {
	if err == nil {
		return false
	}
	for _, errno := range permanentErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
