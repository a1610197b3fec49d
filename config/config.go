// Package config loads installer settings from an HCL file and the
// environment.
//
// A config file looks like:
//
//	install_root = "/home/steve/.minecraft"
//	concurrency  = 32
//	item_timeout = "5m"
//	log_file     = true
//
// Environment variables with the MODINSTALLER_ prefix override the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// FileName is the default config location relative to the XDG config home.
const FileName = "modinstaller/config.hcl"

// Config holds installer settings.
type Config struct {
	InstallRoot string
	Concurrency int
	ItemTimeout time.Duration
	UserAgent   string
	APIURL      string
	Verbosity   int
	LogFile     bool
}

// Default returns a Config with the default settings.
func Default() Config {
	return Config{
		InstallRoot: DefaultInstallRoot(),
		Concurrency: 60,
		UserAgent:   "modinstaller",
		APIURL:      "https://api.modpacks.ch",
	}
}

// DefaultInstallRoot returns the platform's Minecraft data directory.
func DefaultInstallRoot() string {
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, ".minecraft")
		}
		return filepath.Join(xdg.ConfigHome, ".minecraft")
	case "darwin":
		return filepath.Join(xdg.DataHome, "minecraft")
	}
	return filepath.Join(xdg.Home, ".minecraft")
}

// DefaultFile returns the config file path under the XDG config home.
func DefaultFile() string {
	return filepath.Join(xdg.ConfigHome, FileName)
}

type hclConfig struct {
	InstallRoot string `hcl:"install_root,optional"`
	Concurrency int    `hcl:"concurrency,optional"`
	ItemTimeout string `hcl:"item_timeout,optional"`
	UserAgent   string `hcl:"user_agent,optional"`
	APIURL      string `hcl:"api_url,optional"`
	Verbosity   int    `hcl:"verbosity,optional"`
	LogFile     bool   `hcl:"log_file,optional"`
}

// LoadFile reads the HCL config file at path on top of Default.
func LoadFile(path string) (Config, error) {
	p := hclparse.NewParser()
	file, diags := p.ParseHCLFile(path)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("parse config file: %w", diags)
	}
	var hc hclConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &hc); diags.HasErrors() {
		return Config{}, fmt.Errorf("decode config file: %w", diags)
	}

	override := Config{
		InstallRoot: hc.InstallRoot,
		Concurrency: hc.Concurrency,
		UserAgent:   hc.UserAgent,
		APIURL:      hc.APIURL,
		Verbosity:   hc.Verbosity,
		LogFile:     hc.LogFile,
	}
	if hc.ItemTimeout != "" {
		d, err := time.ParseDuration(hc.ItemTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse item_timeout: %w", err)
		}
		override.ItemTimeout = d
	}
	return Default().Merge(override), nil
}

// LoadFromEnv applies MODINSTALLER_* environment variables to c.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("MODINSTALLER_ROOT"); v != "" {
		c.InstallRoot = v
	}
	if v := os.Getenv("MODINSTALLER_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse MODINSTALLER_CONCURRENCY: %w", err)
		}
		c.Concurrency = n
	}
	if v := os.Getenv("MODINSTALLER_ITEM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse MODINSTALLER_ITEM_TIMEOUT: %w", err)
		}
		c.ItemTimeout = d
	}
	if v := os.Getenv("MODINSTALLER_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("MODINSTALLER_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("MODINSTALLER_VERBOSITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse MODINSTALLER_VERBOSITY: %w", err)
		}
		c.Verbosity = n
	}
	if v := os.Getenv("MODINSTALLER_LOG_FILE"); v != "" {
		c.LogFile = v == "true" || v == "1"
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.InstallRoot == "" {
		return errors.New("config: install root is required")
	}
	if c.Concurrency <= 0 {
		return errors.New("config: concurrency must be positive")
	}
	if c.ItemTimeout < 0 {
		return errors.New("config: item timeout must not be negative")
	}
	if c.APIURL == "" {
		return errors.New("config: api url is required")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.InstallRoot != "" {
		c.InstallRoot = override.InstallRoot
	}
	if override.Concurrency != 0 {
		c.Concurrency = override.Concurrency
	}
	if override.ItemTimeout != 0 {
		c.ItemTimeout = override.ItemTimeout
	}
	if override.UserAgent != "" {
		c.UserAgent = override.UserAgent
	}
	if override.APIURL != "" {
		c.APIURL = override.APIURL
	}
	if override.Verbosity != 0 {
		c.Verbosity = override.Verbosity
	}
	if override.LogFile {
		c.LogFile = override.LogFile
	}
	return c
}
