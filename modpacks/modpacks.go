// Package modpacks is a client for the modpacks.ch pack API.
package modpacks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tie/modinstaller/fetcher"
	"github.com/tie/modinstaller/models"
)

// DefaultURL is the public API endpoint.
const DefaultURL = "https://api.modpacks.ch"

var ErrNoVersions = errors.New("pack has no versions")

// Provider selects the API namespace a pack id belongs to.
type Provider string

const (
	ProviderFTB   Provider = "modpack"
	ProviderCurse Provider = "curseforge"
)

type Client struct {
	// HTTP issues the API requests.
	HTTP *fetcher.Client

	// BaseURL overrides DefaultURL.
	BaseURL string
}

// Pack is the metadata of a modpack.
type Pack struct {
	ID       uint32    `json:"id"`
	Name     string    `json:"name"`
	Synopsis string    `json:"synopsis"`
	Type     string    `json:"type"`
	Updated  Timestamp `json:"updated"`
	Authors  []Author  `json:"authors"`
	Versions []Version `json:"versions"`
}

type Author struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
}

// Version is a version entry of a Pack.
type Version struct {
	ID      uint32    `json:"id"`
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	Updated Timestamp `json:"updated"`
}

// Latest returns the most recently updated version.
func (p *Pack) Latest() (Version, error) {
	if len(p.Versions) == 0 {
		return Version{}, fmt.Errorf("pack %d: %w", p.ID, ErrNoVersions)
	}
	latest := p.Versions[0]
	for _, v := range p.Versions[1:] {
		if v.Updated.After(latest.Updated.Time) {
			latest = v
		}
	}
	return latest, nil
}

// VersionData is the file listing of one pack version.
type VersionData struct {
	ID      uint32     `json:"id"`
	Name    string     `json:"name"`
	Type    string     `json:"type"`
	Parent  uint32     `json:"parent"`
	Updated Timestamp  `json:"updated"`
	Targets []Target   `json:"targets"`
	Files   []FileData `json:"files"`
}

// Target is a launch dependency such as the game or a mod loader.
type Target struct {
	ID      uint32    `json:"id"`
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	Version string    `json:"version"`
	Updated Timestamp `json:"updated"`
}

type FileData struct {
	ID         uint32      `json:"id"`
	Type       string      `json:"type"`
	Name       string      `json:"name"`
	Path       string      `json:"path"`
	URL        string      `json:"url"`
	SHA1       string      `json:"sha1"`
	Size       int64       `json:"size"`
	Optional   bool        `json:"optional"`
	ClientOnly bool        `json:"clientonly"`
	ServerOnly bool        `json:"serveronly"`
	Updated    Timestamp   `json:"updated"`
	Version    FileVersion `json:"version"`
}

// Timestamp is a unix time in seconds.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var sec int64
	if err := json.Unmarshal(b, &sec); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	t.Time = time.Unix(sec, 0).UTC()
	return nil
}

// FileVersion is either a number or a free-form string.
type FileVersion string

func (v *FileVersion) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*v = FileVersion(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("file version: %w", err)
	}
	*v = FileVersion(s)
	return nil
}

// PackFiles converts the listing into pack files. Paths from the API are
// relative to the install root and may carry "./" and trailing slashes.
func (d *VersionData) PackFiles() ([]models.PackFile, error) {
	files := make([]models.PackFile, 0, len(d.Files))
	for _, f := range d.Files {
		kind, err := models.ParseKind(f.Type)
		if err != nil {
			return nil, fmt.Errorf("file %d %q: %w", f.ID, f.Name, err)
		}
		files = append(files, models.PackFile{
			ID:         f.ID,
			Name:       f.Name,
			Kind:       kind,
			Dir:        cleanDir(f.Path),
			Optional:   f.Optional,
			ClientOnly: f.ClientOnly,
			ServerOnly: f.ServerOnly,
			SHA1:       strings.ToLower(f.SHA1),
			Size:       f.Size,
			URL:        f.URL,
			Updated:    f.Updated.Time,
		})
	}
	return files, nil
}

func cleanDir(p string) string {
	p = strings.Trim(strings.ReplaceAll(p, "\\", "/"), "/")
	for strings.HasPrefix(p, "./") {
		p = strings.TrimLeft(strings.TrimPrefix(p, "./"), "/")
	}
	if p == "." {
		return ""
	}
	return p
}

// Pack returns the metadata of pack id.
func (c *Client) Pack(ctx context.Context, provider Provider, id uint32) (*Pack, error) {
	var p Pack
	if err := c.get(ctx, c.endpoint(provider, id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// VersionData returns the file listing of version of pack.
func (c *Client) VersionData(ctx context.Context, provider Provider, pack, version uint32) (*VersionData, error) {
	var d VersionData
	u := c.endpoint(provider, pack) + "/" + strconv.FormatUint(uint64(version), 10)
	if err := c.get(ctx, u, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// VersionFiles returns the pack files of version of pack. A zero version
// selects the latest one.
func (c *Client) VersionFiles(ctx context.Context, provider Provider, pack, version uint32) ([]models.PackFile, error) {
	if version == 0 {
		p, err := c.Pack(ctx, provider, pack)
		if err != nil {
			return nil, err
		}
		latest, err := p.Latest()
		if err != nil {
			return nil, err
		}
		version = latest.ID
	}
	d, err := c.VersionData(ctx, provider, pack, version)
	if err != nil {
		return nil, err
	}
	return d.PackFiles()
}

func (c *Client) endpoint(provider Provider, id uint32) string {
	base := c.BaseURL
	if base == "" {
		base = DefaultURL
	}
	return fmt.Sprintf("%s/public/%s/%d", strings.TrimSuffix(base, "/"), provider, id)
}

func (c *Client) get(ctx context.Context, url string, v interface{}) (err error) {
	body, err := c.HTTP.Get(ctx, url)
	if err != nil {
		return err
	}
	defer func() {
		cerr := body.Close()
		if err == nil {
			err = cerr
		}
	}()
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read %q: %w", url, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %q: %w", url, err)
	}
	return nil
}
