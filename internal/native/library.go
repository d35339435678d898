// Package native loads the external scrambling library at run time.
//
// The library must export:
//
//	int     scramble_init_from_file(const char *file, unsigned algo, unsigned rounds, int *status);
//	int32_t scramble_ip4(uint32_t input, int pass_bits);
package native

import (
	"errors"
	"fmt"
)

const (
	initSymbol     = "scramble_init_from_file"
	scrambleSymbol = "scramble_ip4"
)

var ErrLibraryLoad = errors.New("failed to load scrambling library")

// LibraryLoadError reports a library that cannot be opened or that lacks one
// of the required symbols.
type LibraryLoadError struct {
	Path   string
	Symbol string
	Err    error
}

func (e *LibraryLoadError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("%s %s: symbol %s: %v", ErrLibraryLoad, e.Path, e.Symbol, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", ErrLibraryLoad, e.Path, e.Err)
}

func (e *LibraryLoadError) Unwrap() []error {
	return []error{ErrLibraryLoad, e.Err}
}

// Library is a loaded scrambling library. It satisfies anonymizer.Primitive.
type Library struct {
	path string
	h    handle

	initFn     func(keyFile string, algorithm, rounds uint32, status *int32) int32
	scrambleFn func(addr uint32, passBits int32) int32
}

// Open loads the library at path and resolves both entry points.
func Open(path string) (*Library, error) {
	if path == "" {
		return nil, &LibraryLoadError{Path: path, Err: errors.New("empty library path")}
	}
	l := &Library{path: path}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Library) InitFromFile(keyFile string, algorithm, rounds uint32, status *int32) int32 {
	return l.initFn(keyFile, algorithm, rounds, status)
}

func (l *Library) ScrambleIP4(addr uint32, passBits int32) int32 {
	return l.scrambleFn(addr, passBits)
}

func (l *Library) Path() string { return l.path }

// Close releases the library handle. The Library must not be used afterwards.
func (l *Library) Close() error {
	if err := l.close(); err != nil {
		return fmt.Errorf("failed to close library %s: %w", l.path, err)
	}
	return nil
}
