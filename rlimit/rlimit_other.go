//go:build !windows && !freebsd
// +build !windows,!freebsd

package rlimit

import (
	"syscall"

	"github.com/pkg/errors"
)

// SetRLimit raises the open files soft limit to at least required and
// returns the limit in effect afterwards.
func SetRLimit(required uint64) (uint64, error) {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, errors.Wrap(err, "getrlimit")
	}
	if uint64(rLimit.Cur) >= required {
		return uint64(rLimit.Cur), nil
	}

	prev := rLimit.Cur
	rLimit.Cur = required
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return uint64(prev), errors.Wrapf(err, "raising open files rlimit from %d to %d", prev, required)
	}
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, errors.Wrap(err, "getrlimit")
	}
	if uint64(rLimit.Cur) < required {
		return uint64(rLimit.Cur), errors.Errorf("Could not change open files rlimit to: %d", required)
	}
	return uint64(rLimit.Cur), nil
}
