//go:build !darwin && !freebsd && !linux && !windows

package native

import (
	"fmt"
	"runtime"
)

type handle = struct{}

func (l *Library) open() error {
	return &LibraryLoadError{Path: l.path, Err: fmt.Errorf("dynamic loading is not supported on %s", runtime.GOOS)}
}

func (l *Library) close() error { return nil }
