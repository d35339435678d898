//go:build windows

package native

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

type handle = *windows.DLL

func (l *Library) open() error {
	dll, err := windows.LoadDLL(l.path)
	if err != nil {
		return &LibraryLoadError{Path: l.path, Err: err}
	}

	initProc, err := dll.FindProc(initSymbol)
	if err != nil {
		_ = dll.Release()
		return &LibraryLoadError{Path: l.path, Symbol: initSymbol, Err: err}
	}
	scrambleProc, err := dll.FindProc(scrambleSymbol)
	if err != nil {
		_ = dll.Release()
		return &LibraryLoadError{Path: l.path, Symbol: scrambleSymbol, Err: err}
	}

	l.initFn = func(keyFile string, algorithm, rounds uint32, status *int32) int32 {
		p, err := windows.BytePtrFromString(keyFile)
		if err != nil {
			return -1
		}
		r, _, _ := initProc.Call(
			uintptr(unsafe.Pointer(p)),
			uintptr(algorithm),
			uintptr(rounds),
			uintptr(unsafe.Pointer(status)),
		)
		return int32(r)
	}
	l.scrambleFn = func(addr uint32, passBits int32) int32 {
		r, _, _ := scrambleProc.Call(uintptr(addr), uintptr(passBits))
		return int32(r)
	}
	l.h = dll
	return nil
}

func (l *Library) close() error {
	if l.h == nil {
		return nil
	}
	err := l.h.Release()
	l.h = nil
	return err
}
