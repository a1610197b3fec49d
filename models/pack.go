package models

import (
	"fmt"
	"path"
	"time"
)

// FileKind is the role of a pack file in the modpack.
type FileKind int

const (
	KindMod FileKind = iota
	KindResource
	KindConfig
	KindScript
	// KindOverrides marks an override bundle archive that is unpacked
	// into the install root after it is acquired.
	KindOverrides
)

var kindNames = [...]string{
	KindMod:       "mod",
	KindResource:  "resource",
	KindConfig:    "config",
	KindScript:    "script",
	KindOverrides: "cf-extract",
}

func (k FileKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("FileKind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses the manifest spelling of a file kind.
func ParseKind(s string) (FileKind, error) {
	for i, name := range kindNames {
		if name == s {
			return FileKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

type PackFile struct {
	// ID is the file ID in the pack version.
	ID uint32

	// Name is the file name with extension.
	Name string

	Kind FileKind

	// Dir is the slash separated directory relative to the install root.
	Dir string

	Optional   bool
	ClientOnly bool
	ServerOnly bool

	// SHA1 is the expected hex encoded SHA-1 digest.
	SHA1 string
	// Size is the expected file size in bytes.
	Size int64

	// URL is the download location.
	URL string

	// Updated is the last modification time reported by the manifest.
	Updated time.Time
}

// Path returns the slash separated path of the file relative to the
// install root.
func (f PackFile) Path() string {
	return path.Join(f.Dir, f.Name)
}
