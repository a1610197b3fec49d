package models

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownKind = errors.New("unknown file kind")

	ErrNetwork  = errors.New("network")
	ErrIO       = errors.New("io")
	ErrArchive  = errors.New("archive")
	ErrManifest = errors.New("manifest")
)

// ErrorKind classifies a per-file failure.
type ErrorKind int

const (
	KindNetwork ErrorKind = iota
	KindIO
	KindArchive
	KindManifest
)

var kindErrors = [...]error{
	KindNetwork:  ErrNetwork,
	KindIO:       ErrIO,
	KindArchive:  ErrArchive,
	KindManifest: ErrManifest,
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kindErrors) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return kindErrors[k].Error()
}

// Error is a failure attributed to a single pack file.
//
// errors.Is matches the sentinel of its kind (ErrNetwork, ErrIO, ErrArchive,
// ErrManifest) as well as anything in the wrapped chain.
type Error struct {
	Kind ErrorKind
	// File is the install-root relative path of the pack file.
	File string
	Err  error
}

// Errorf returns a new Error of the given kind for file.
func Errorf(kind ErrorKind, file string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, File: file, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.File, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	if e.Kind < 0 || int(e.Kind) >= len(kindErrors) {
		return false
	}
	return target == kindErrors[e.Kind]
}
