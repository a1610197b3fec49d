package main

import (
	"bytes"
	"flag"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tie/modinstaller/models"
)

func TestReplaceFile(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "base.pack", []byte("old contents that are longer"), 0644))

	require.NoError(t, replaceFile(fs, "base.pack", []byte("new")))
	got, err := util.ReadFile(fs, "base.pack")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	entries, err := fs.ReadDir(".")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file is renamed away")
}

func TestFormatFile(t *testing.T) {
	fs := memfs.New()
	src := "file \"mods/a.jar\" {\nurl = \"x\"\n    sha1=\"abc\"\n}\n"
	require.NoError(t, util.WriteFile(fs, "base.pack", []byte(src), 0644))

	var buf bytes.Buffer
	changed, err := formatFile(fs, "base.pack", "base.pack", false, &buf, false)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, buf.String(), "--- a/base.pack")
	assert.Contains(t, buf.String(), "+++ b/base.pack")
	assert.Contains(t, buf.String(), "+  sha1 = \"abc\"")

	got, err := util.ReadFile(fs, "base.pack")
	require.NoError(t, err)
	assert.Equal(t, src, string(got), "diff mode leaves the file alone")

	buf.Reset()
	changed, err = formatFile(fs, "base.pack", "base.pack", true, &buf, false)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, buf.String())

	changed, err = formatFile(fs, "base.pack", "base.pack", false, &buf, false)
	require.NoError(t, err)
	assert.False(t, changed, "formatted output is stable")
	assert.Empty(t, buf.String())
}

func TestVerify(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "mods/a.jar", []byte("abc"), 0644))
	require.NoError(t, util.WriteFile(fs, "mods/b.jar", []byte("abd"), 0644))

	files := []models.PackFile{
		{Name: "a.jar", Dir: "mods", Size: 3, SHA1: "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{Name: "b.jar", Dir: "mods", Size: 3, SHA1: "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{Name: "c.jar", Dir: "mods", Size: 3, SHA1: "a9993e364706816aba3e25717850c26c9cd0d89d"},
	}
	bad := verify(fs, files)
	require.Len(t, bad, 2)
	assert.Equal(t, "mods/b.jar", bad[0].Path())
	assert.Equal(t, "mods/c.jar", bad[1].Path())
}

func TestInstallListFlag(t *testing.T) {
	var cmd InstallCommand
	fs := flag.NewFlagSet("install", flag.ContinueOnError)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse([]string{"-list", "-strict", "-j", "4"}))
	assert.True(t, cmd.List)
	assert.True(t, cmd.Strict)
	assert.Equal(t, 4, cmd.Concurrency)
}
