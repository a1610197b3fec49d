package models

import (
	"github.com/go-git/go-billy/v5"
)

// Status is the result class of acquiring one pack file.
type Status int

const (
	StatusFailed Status = iota
	// StatusAlreadyValid means the local copy matched and nothing was fetched.
	StatusAlreadyValid
	// StatusFetched means the file was downloaded and written.
	StatusFetched
)

func (s Status) String() string {
	switch s {
	case StatusAlreadyValid:
		return "valid"
	case StatusFetched:
		return "fetched"
	}
	return "failed"
}

// Outcome is the result of processing one PackFile.
type Outcome struct {
	Status Status

	// Path is the install-root relative path of the file.
	Path string

	// File is an open read handle to the local file. It is nil when
	// the acquisition failed.
	File billy.File

	// Err describes the failure when Status is StatusFailed.
	Err *Error

	// SHA1 is the hex digest of the bytes written for a fetched file.
	SHA1 string

	// Unpacked is set for override bundles that were unpacked.
	Unpacked *Unpacked
}

// Failed returns an Outcome for err.
func Failed(err *Error) Outcome {
	return Outcome{Status: StatusFailed, Path: err.File, Err: err}
}

// OK reports whether the file is available locally.
func (o Outcome) OK() bool {
	return o.Status != StatusFailed
}

// Unpacked describes what an override bundle installed.
type Unpacked struct {
	// Files lists install-root relative paths written from the bundle.
	Files []string

	// Unresolved lists mod references from the bundle manifest that
	// were not installed.
	Unresolved []ModRef
}

// ModRef references a mod file by external project and file id.
type ModRef struct {
	ProjectID uint32
	FileID    uint32
	Required  bool
}
