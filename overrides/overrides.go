// Package overrides installs override bundles: zip archives carrying a
// manifest.json and a directory tree that is merged into the install root.
package overrides

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"

	"github.com/tie/modinstaller/models"
	"github.com/tie/modinstaller/overrides/jsonspec"
)

// ManifestName is the archive entry holding the bundle manifest.
const ManifestName = "manifest.json"

var (
	ErrNoManifest = errors.New("bundle has no " + ManifestName)
	ErrUnsafePath = errors.New("entry escapes install root")
)

type Unpacker struct {
	// Files is the install root.
	Files billy.Filesystem

	Logger zerolog.Logger
}

// Unpack reads the bundle named name from r and copies its overrides
// directory into the install root, replacing existing files.
//
// Mod references listed by the bundle manifest are not installed; they are
// returned in Unresolved. Errors are *models.Error values attributed to
// name.
func (u *Unpacker) Unpack(name string, r io.ReaderAt, size int64) (models.Unpacked, error) {
	var res models.Unpacked
	fail := func(kind models.ErrorKind, err error) (models.Unpacked, error) {
		return models.Unpacked{}, &models.Error{Kind: kind, File: name, Err: err}
	}

	z, err := zip.NewReader(r, size)
	if err != nil {
		return fail(models.KindArchive, err)
	}
	m, err := readManifest(z)
	if err != nil {
		if errors.Is(err, ErrNoManifest) {
			return fail(models.KindArchive, err)
		}
		return fail(models.KindManifest, err)
	}

	ev := u.Logger.Debug().Str("bundle", name).Str("game", m.GameVersion())
	if l, ok := m.PrimaryLoader(); ok {
		ev = ev.Str("loader", l.ID)
	}
	ev.Msg("bundle manifest")

	if dir, ok := m.OverridesDir(); ok {
		prefix := splitPath(dir)
		for _, f := range z.File {
			// Directory entries are created on demand.
			if strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir() {
				continue
			}
			if len(prefix) == 0 && f.Name == ManifestName {
				continue
			}
			rel, ok := stripPrefix(f.Name, prefix)
			if !ok {
				continue
			}
			if !iofs.ValidPath(rel) {
				return fail(models.KindArchive, fmt.Errorf("%w: %q", ErrUnsafePath, f.Name))
			}
			if err := u.copyFile(f, rel); err != nil {
				return fail(models.KindIO, fmt.Errorf("copy %q: %w", f.Name, err))
			}
			u.Logger.Debug().Str("bundle", name).Str("path", rel).Msg("override installed")
			res.Files = append(res.Files, rel)
		}
	}

	for _, f := range m.FileRefs() {
		res.Unresolved = append(res.Unresolved, models.ModRef{
			ProjectID: f.ProjectID,
			FileID:    f.FileID,
			Required:  f.IsRequired(),
		})
	}
	return res, nil
}

func readManifest(z *zip.Reader) (*jsonspec.Manifest, error) {
	for _, f := range z.File {
		if f.Name != ManifestName {
			continue
		}
		r, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = r.Close()
		}()
		return jsonspec.Decode(r)
	}
	return nil, ErrNoManifest
}

func (u *Unpacker) copyFile(f *zip.File, name string) (err error) {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Close()
	}()

	if dir := path.Dir(name); dir != "." {
		if err := u.Files.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	flags := os.O_WRONLY | os.O_TRUNC | os.O_CREATE
	w, err := u.Files.OpenFile(name, flags, 0644)
	if err != nil {
		return err
	}
	defer func() {
		cerr := w.Close()
		if err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(w, r)
	return err
}

// splitPath splits an archive path into its non-empty components.
// Backslashes written by some Windows archivers are treated as separators.
func splitPath(p string) []string {
	p = strings.ReplaceAll(p, "\\", "/")
	var parts []string
	for _, part := range strings.Split(p, "/") {
		if part == "" || part == "." {
			continue
		}
		parts = append(parts, part)
	}
	return parts
}

// stripPrefix removes the leading components prefix from name and returns
// the remainder. It reports false when name is not strictly below prefix.
func stripPrefix(name string, prefix []string) (string, bool) {
	parts := splitPath(name)
	if len(parts) <= len(prefix) {
		return "", false
	}
	for i, p := range prefix {
		if parts[i] != p {
			return "", false
		}
	}
	return path.Join(parts[len(prefix):]...), true
}
