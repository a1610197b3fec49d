// Package integrity decides whether a locally cached pack file can be
// reused instead of being fetched again.
package integrity

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"

	"github.com/go-git/go-billy/v5"
)

var ErrBadDigest = errors.New("malformed sha1 digest")

var newHash = sha1.New

// IsValid reports whether name exists in fs as a regular file of exactly
// size bytes whose SHA-1 digest equals sha1Hex.
//
// A negative size or a digest that does not decode to 20 bytes makes the
// file invalid. Read errors are treated as a mismatch.
func IsValid(fs billy.Basic, name string, size int64, sha1Hex string) bool {
	if size < 0 {
		return false
	}
	fi, err := fs.Stat(name)
	if err != nil {
		return false
	}
	if !fi.Mode().IsRegular() || fi.Size() != size {
		return false
	}
	want, err := Decode(sha1Hex)
	if err != nil {
		return false
	}
	f, err := fs.Open(name)
	if err != nil {
		return false
	}
	defer func() {
		_ = f.Close()
	}()
	h := newHash()
	if _, err := io.Copy(h, bufio.NewReader(f)); err != nil {
		return false
	}
	return bytes.Equal(h.Sum(nil), want)
}

// Decode decodes a hex SHA-1 digest.
func Decode(sha1Hex string) ([]byte, error) {
	b, err := hex.DecodeString(sha1Hex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDigest, err)
	}
	if len(b) != sha1.Size {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadDigest, len(b))
	}
	return b, nil
}

// New returns a hash for computing digests comparable with IsValid.
func New() hash.Hash {
	return newHash()
}

// Matches reports whether the digest of h equals sha1Hex.
func Matches(h hash.Hash, sha1Hex string) bool {
	want, err := Decode(sha1Hex)
	if err != nil {
		return false
	}
	return bytes.Equal(h.Sum(nil), want)
}
