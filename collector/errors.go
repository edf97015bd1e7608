package collector

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"
)

// Common errors
var (
	ErrProcessVanished = errors.New("process vanished")
	ErrAccessDenied    = errors.New("access denied")
)

// classify maps OS and gopsutil failures onto the two conditions callers act
// on. It returns nil for anything else.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrProcessVanished),
		errors.Is(err, process.ErrorProcessNotRunning),
		errors.Is(err, os.ErrProcessDone),
		errors.Is(err, unix.ESRCH),
		errors.Is(err, fs.ErrNotExist):
		return ErrProcessVanished
	case errors.Is(err, ErrAccessDenied),
		errors.Is(err, unix.EPERM),
		errors.Is(err, unix.EACCES),
		errors.Is(err, fs.ErrPermission):
		return ErrAccessDenied
	}
	return nil
}

func wrap(pid int32, op string, err error) error {
	if kind := classify(err); kind != nil && !errors.Is(err, kind) {
		return fmt.Errorf("pid %d: %s: %w: %w", pid, op, kind, err)
	}
	return fmt.Errorf("pid %d: %s: %w", pid, op, err)
}
