package pack

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tie/modinstaller/models"
)

func writePack(t *testing.T, name, src string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(src), 0644))
	return p
}

const basePack = `
file "mods/jei.jar" {
  url  = "https://example.com/jei.jar"
  sha1 = "A9993E364706816ABA3E25717850C26C9CD0D89D"
  size = 3
  id   = 42
}

file "config/jei.cfg" {
  kind = "config"
  url  = "https://example.com/jei.cfg"
}

file "options.txt" {
  kind        = "config"
  url         = "https://example.com/options.txt"
  client_only = true
  updated     = "2020-05-01T10:00:00Z"
}
`

func TestLoad(t *testing.T) {
	extra := writePack(t, "extra.pack", `
file "resourcepacks/faithful.zip" {
  kind     = "resource"
  url      = "https://example.com/faithful.zip"
  optional = true
}

file ".modinstaller/overrides.zip" {
  kind = "cf-extract"
  url  = "https://example.com/overrides.zip"
}
`)
	files, err := Load(hclparse.NewParser(), []string{writePack(t, "base.pack", basePack), extra})
	require.NoError(t, err)
	require.Len(t, files, 5)

	assert.Equal(t, models.PackFile{
		ID:   42,
		Name: "jei.jar",
		Kind: models.KindMod,
		Dir:  "mods",
		SHA1: "a9993e364706816aba3e25717850c26c9cd0d89d",
		Size: 3,
		URL:  "https://example.com/jei.jar",
	}, files[0])
	assert.Equal(t, models.KindConfig, files[1].Kind)
	assert.Equal(t, "", files[2].Dir)
	assert.Equal(t, "options.txt", files[2].Path())
	assert.True(t, files[2].ClientOnly)
	assert.Equal(t, time.Date(2020, 5, 1, 10, 0, 0, 0, time.UTC), files[2].Updated.UTC())
	assert.True(t, files[3].Optional)
	assert.Equal(t, models.KindOverrides, files[4].Kind)
}

func TestLoadDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `file "a.jar" {`},
		{"missing url", `file "a.jar" {}`},
		{"unknown attribute", `file "a.jar" {
  url   = "x"
  color = "red"
}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(hclparse.NewParser(), []string{writePack(t, "bad.pack", tt.src)})
			require.Error(t, err)
			var diags hcl.Diagnostics
			assert.ErrorAs(t, err, &diags)
		})
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
	}{
		{"duplicate", `
file "mods/a.jar" { url = "x" }
file "mods/./a.jar" { url = "y" }
`, ErrDuplicatePath},
		{"escaping", `file "../a.jar" { url = "x" }`, ErrInvalidPath},
		{"absolute", `file "/etc/a.jar" { url = "x" }`, ErrInvalidPath},
		{"unknown kind", `file "a.jar" {
  url  = "x"
  kind = "plugin"
}`, models.ErrUnknownKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(hclparse.NewParser(), []string{writePack(t, "bad.pack", tt.src)})
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestDuplicateAcrossManifests(t *testing.T) {
	a := writePack(t, "a.pack", `file "mods/a.jar" { url = "x" }`)
	b := writePack(t, "b.pack", `file "mods/a.jar" { url = "y" }`)
	_, err := Load(hclparse.NewParser(), []string{a, b})
	assert.ErrorIs(t, err, ErrDuplicatePath)
}

func TestEncode(t *testing.T) {
	files, err := Load(hclparse.NewParser(), []string{writePack(t, "base.pack", basePack)})
	require.NoError(t, err)

	out := Encode(files)
	assert.Contains(t, string(out), `file "mods/jei.jar" {`)
	assert.NotContains(t, string(out), `kind = "mod"`)

	again, err := Load(hclparse.NewParser(), []string{writePack(t, "out.pack", string(out))})
	require.NoError(t, err)
	require.Len(t, again, len(files))
	for i := range files {
		assert.Equal(t, files[i].Path(), again[i].Path())
		assert.Equal(t, files[i].Kind, again[i].Kind)
		assert.True(t, files[i].Updated.Equal(again[i].Updated))
	}
}

func TestFilter(t *testing.T) {
	files := []models.PackFile{
		{Name: "common.jar"},
		{Name: "client.jar", ClientOnly: true},
		{Name: "server.jar", ServerOnly: true},
		{Name: "extra.jar", Optional: true},
	}
	names := func(fs []models.PackFile) []string {
		var out []string
		for _, f := range fs {
			out = append(out, f.Name)
		}
		return out
	}

	assert.Equal(t, []string{"common.jar", "client.jar", "server.jar", "extra.jar"}, names(Filter(files, SideBoth, true)))
	assert.Equal(t, []string{"common.jar", "client.jar", "extra.jar"}, names(Filter(files, SideClient, true)))
	assert.Equal(t, []string{"common.jar", "server.jar"}, names(Filter(files, SideServer, false)))
}

func TestParseSide(t *testing.T) {
	s, err := ParseSide("client")
	require.NoError(t, err)
	assert.Equal(t, SideClient, s)

	s, err = ParseSide("")
	require.NoError(t, err)
	assert.Equal(t, SideBoth, s)

	_, err = ParseSide("proxy")
	assert.ErrorIs(t, err, ErrUnknownSide)
}
