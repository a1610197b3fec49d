// Package pack reads and writes local .pack manifests.
package pack

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"path"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/tie/modinstaller/models"
	"github.com/tie/modinstaller/pack/hclspec"
)

var (
	ErrDuplicatePath = errors.New("duplicate file path")
	ErrInvalidPath   = errors.New("invalid file path")
	ErrUnknownSide   = errors.New("unknown side")
)

// Parse parses and decodes the manifests at paths with p. Diagnostics for
// every file are returned so they can all be reported at once.
func Parse(p *hclparse.Parser, paths []string) ([]hclspec.Manifest, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	ms := make([]hclspec.Manifest, 0, len(paths))
	for _, fpath := range paths {
		file, parseDiags := p.ParseHCLFile(fpath)
		diags = append(diags, parseDiags...)
		if parseDiags.HasErrors() {
			continue
		}
		var m hclspec.Manifest
		decodeDiags := gohcl.DecodeBody(file.Body, nil, &m)
		diags = append(diags, decodeDiags...)
		if decodeDiags.HasErrors() {
			continue
		}
		ms = append(ms, m)
	}
	return ms, diags
}

// Files merges manifests into a list of pack files in declaration order.
// Paths must be valid relative paths and unique across all manifests.
func Files(ms []hclspec.Manifest) ([]models.PackFile, error) {
	n := 0
	for _, m := range ms {
		n += len(m.Files)
	}
	if n == 0 {
		return nil, nil
	}

	files := make([]models.PackFile, 0, n)
	seen := make(map[string]bool, n)
	for _, m := range ms {
		for _, f := range m.Files {
			pf, err := packFile(f)
			if err != nil {
				return nil, err
			}
			p := pf.Path()
			if seen[p] {
				return nil, fmt.Errorf("%w: %q", ErrDuplicatePath, p)
			}
			seen[p] = true
			files = append(files, pf)
		}
	}
	return files, nil
}

// Load parses the manifests at paths and merges them.
func Load(p *hclparse.Parser, paths []string) ([]models.PackFile, error) {
	ms, diags := Parse(p, paths)
	if diags.HasErrors() {
		return nil, diags
	}
	return Files(ms)
}

func packFile(f hclspec.File) (models.PackFile, error) {
	p := strings.TrimPrefix(path.Clean(f.Path), "./")
	if p == "." || !iofs.ValidPath(p) {
		return models.PackFile{}, fmt.Errorf("%w: %q", ErrInvalidPath, f.Path)
	}

	kind := models.KindMod
	if f.Kind != "" {
		k, err := models.ParseKind(f.Kind)
		if err != nil {
			return models.PackFile{}, fmt.Errorf("file %q: %w", f.Path, err)
		}
		kind = k
	}

	var updated time.Time
	if f.Updated != "" {
		t, err := time.Parse(time.RFC3339, f.Updated)
		if err != nil {
			return models.PackFile{}, fmt.Errorf("file %q: parse updated: %w", f.Path, err)
		}
		updated = t
	}

	dir, name := path.Split(p)
	return models.PackFile{
		ID:         uint32(f.ID),
		Name:       name,
		Kind:       kind,
		Dir:        strings.TrimSuffix(dir, "/"),
		Optional:   f.Optional,
		ClientOnly: f.ClientOnly,
		ServerOnly: f.ServerOnly,
		SHA1:       strings.ToLower(f.SHA1),
		Size:       f.Size,
		URL:        f.URL,
		Updated:    updated,
	}, nil
}
