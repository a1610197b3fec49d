// Package jsonspec describes the manifest.json found at the root of a
// CurseForge style override bundle.
package jsonspec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var ErrMissingField = errors.New("missing manifest field")

type Manifest struct {
	ManifestType    string `json:"manifestType"`
	ManifestVersion int    `json:"manifestVersion"`

	Minecraft MinecraftInstance `json:"minecraft"`

	Name      string `json:"name,omitempty"`
	Version   string `json:"version"`
	Author    string `json:"author"`
	Desc      string `json:"description"`
	ProjectID int    `json:"projectID,omitempty"`

	Files     []File  `json:"files"`
	Overrides *string `json:"overrides,omitempty"`
}

type MinecraftInstance struct {
	Version    string      `json:"version"`
	ModLoaders []ModLoader `json:"modLoaders"`
}

type ModLoader struct {
	ID      string `json:"id"`
	Primary *bool  `json:"primary,omitempty"`
}

type File struct {
	ProjectID uint32 `json:"projectID"`
	FileID    uint32 `json:"fileID"`
	Required  *bool  `json:"required,omitempty"`
}

// IsRequired reports whether the file is required. An absent flag means
// required.
func (f File) IsRequired() bool {
	return f.Required == nil || *f.Required
}

// IsPrimary reports whether the loader is marked primary.
func (l ModLoader) IsPrimary() bool {
	return l.Primary != nil && *l.Primary
}

// OverridesDir returns the archive directory holding files to copy into
// the install root, if any.
func (m *Manifest) OverridesDir() (string, bool) {
	if m.Overrides == nil {
		return "", false
	}
	return *m.Overrides, true
}

// FileRefs returns the mod files the pack references by project and file id.
func (m *Manifest) FileRefs() []File {
	return m.Files
}

// PrimaryLoader returns the mod loader marked primary, or the first one
// when none is marked.
func (m *Manifest) PrimaryLoader() (ModLoader, bool) {
	for _, l := range m.Minecraft.ModLoaders {
		if l.IsPrimary() {
			return l, true
		}
	}
	if len(m.Minecraft.ModLoaders) > 0 {
		return m.Minecraft.ModLoaders[0], true
	}
	return ModLoader{}, false
}

// GameVersion returns the Minecraft version the pack targets.
func (m *Manifest) GameVersion() string {
	return m.Minecraft.Version
}

var requiredFields = []string{
	"manifestType",
	"manifestVersion",
	"version",
	"author",
	"description",
	"files",
	"minecraft",
}

var requiredMinecraftFields = []string{
	"modLoaders",
	"version",
}

// Decode reads a manifest from r. Every field except overrides, name,
// projectID and the per-entry required/primary flags must be present.
func Decode(r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if err := checkFields(raw, requiredFields, ""); err != nil {
		return nil, err
	}
	var mc map[string]json.RawMessage
	if err := json.Unmarshal(raw["minecraft"], &mc); err != nil {
		return nil, fmt.Errorf("minecraft: %w", err)
	}
	if err := checkFields(mc, requiredMinecraftFields, "minecraft."); err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func checkFields(raw map[string]json.RawMessage, fields []string, prefix string) error {
	for _, name := range fields {
		v, ok := raw[name]
		if !ok || string(v) == "null" {
			return fmt.Errorf("%w: %s%s", ErrMissingField, prefix, name)
		}
	}
	return nil
}
