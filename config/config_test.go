package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 60, cfg.Concurrency)
	assert.Equal(t, "https://api.modpacks.ch", cfg.APIURL)
	assert.NotEmpty(t, cfg.InstallRoot)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
install_root = "/srv/minecraft"
concurrency  = 8
item_timeout = "90s"
log_file     = true
`), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/minecraft", cfg.InstallRoot)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 90*time.Second, cfg.ItemTimeout)
	assert.True(t, cfg.LogFile)
	assert.Equal(t, "https://api.modpacks.ch", cfg.APIURL, "unset values keep defaults")
}

func TestLoadFileErrors(t *testing.T) {
	tests := map[string]string{
		"syntax":      `concurrency = `,
		"unknown":     `workers = 4`,
		"bad timeout": `item_timeout = "soon"`,
		"bad type":    `concurrency = "many"`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.hcl")
			require.NoError(t, os.WriteFile(path, []byte(src), 0644))
			_, err := LoadFile(path)
			assert.Error(t, err)
		})
	}

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MODINSTALLER_ROOT", "/tmp/mc")
	t.Setenv("MODINSTALLER_CONCURRENCY", "4")
	t.Setenv("MODINSTALLER_ITEM_TIMEOUT", "1m")
	t.Setenv("MODINSTALLER_LOG_FILE", "1")

	cfg := Default()
	require.NoError(t, cfg.LoadFromEnv())
	assert.Equal(t, "/tmp/mc", cfg.InstallRoot)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, time.Minute, cfg.ItemTimeout)
	assert.True(t, cfg.LogFile)

	t.Setenv("MODINSTALLER_CONCURRENCY", "lots")
	assert.Error(t, cfg.LoadFromEnv())
}

func TestMerge(t *testing.T) {
	base := Default()
	merged := base.Merge(Config{Concurrency: 2, UserAgent: "test"})
	assert.Equal(t, 2, merged.Concurrency)
	assert.Equal(t, "test", merged.UserAgent)
	assert.Equal(t, base.InstallRoot, merged.InstallRoot)
	assert.Equal(t, 60, base.Concurrency, "receiver is not modified")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no root", func(c *Config) { c.InstallRoot = "" }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"negative timeout", func(c *Config) { c.ItemTimeout = -time.Second }},
		{"no api", func(c *Config) { c.APIURL = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
