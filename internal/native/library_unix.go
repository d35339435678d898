//go:build darwin || freebsd || linux

package native

import (
	"github.com/ebitengine/purego"
)

type handle = uintptr

func (l *Library) open() error {
	h, err := purego.Dlopen(l.path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return &LibraryLoadError{Path: l.path, Err: err}
	}

	// RegisterLibFunc panics on a missing symbol, so look both up first.
	initSym, err := purego.Dlsym(h, initSymbol)
	if err != nil {
		_ = purego.Dlclose(h)
		return &LibraryLoadError{Path: l.path, Symbol: initSymbol, Err: err}
	}
	scrambleSym, err := purego.Dlsym(h, scrambleSymbol)
	if err != nil {
		_ = purego.Dlclose(h)
		return &LibraryLoadError{Path: l.path, Symbol: scrambleSymbol, Err: err}
	}

	purego.RegisterFunc(&l.initFn, initSym)
	purego.RegisterFunc(&l.scrambleFn, scrambleSym)
	l.h = h
	return nil
}

func (l *Library) close() error {
	if l.h == 0 {
		return nil
	}
	err := purego.Dlclose(l.h)
	l.h = 0
	return err
}
