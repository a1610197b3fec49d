package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/tie/modinstaller/config"
	"github.com/tie/modinstaller/fetcher"
	"github.com/tie/modinstaller/logging"
	"github.com/tie/modinstaller/models"
	"github.com/tie/modinstaller/modpacks"
	"github.com/tie/modinstaller/pack"
)

// settings are the flags shared by commands that touch the install root
// or the pack API.
type settings struct {
	ConfigPath  string
	InstallRoot string
	Concurrency int
	Verbosity   int
	LogFile     bool
}

func (s *settings) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&s.ConfigPath, "config", "", "config file path (default: XDG config home)")
	fs.StringVar(&s.InstallRoot, "root", "", "install root (default: Minecraft data directory)")
	fs.IntVar(&s.Concurrency, "j", 0, "number of files acquired at once")
	fs.IntVar(&s.Verbosity, "v", 0, "log verbosity (0-3)")
	fs.BoolVar(&s.LogFile, "log", false, "also log to the state directory")
}

// load resolves the configuration: defaults, then the config file, then
// the environment, then flags. It also sets up logging; the returned
// function closes the log file.
func (s *settings) load() (config.Config, func(), error) {
	cfg := config.Default()
	cpath := s.ConfigPath
	if cpath == "" {
		cpath = config.DefaultFile()
	}
	if _, err := os.Stat(cpath); err == nil || s.ConfigPath != "" {
		c, err := config.LoadFile(cpath)
		if err != nil {
			return cfg, func() {}, err
		}
		cfg = c
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return cfg, func() {}, err
	}
	cfg = cfg.Merge(config.Config{
		InstallRoot: s.InstallRoot,
		Concurrency: s.Concurrency,
		Verbosity:   s.Verbosity,
		LogFile:     s.LogFile,
	})
	done := logging.Setup(cfg.Verbosity, cfg.LogFile)
	if err := cfg.Validate(); err != nil {
		return cfg, done, err
	}
	return cfg, done, nil
}

func newClient(cfg config.Config) *fetcher.Client {
	opts := fetcher.DefaultOptions()
	opts.MaxIdleConnsPerHost = cfg.Concurrency
	opts.UserAgent = cfg.UserAgent
	return fetcher.NewClient(opts)
}

// source selects where the pack file list comes from: a remote pack
// version or local .pack manifests.
type source struct {
	PackID    uint
	VersionID uint
	Curse     bool
	Side      string
	Optional  bool
}

func (s *source) SetFlags(fs *flag.FlagSet) {
	fs.UintVar(&s.PackID, "pack", 0, "remote pack id")
	fs.UintVar(&s.VersionID, "version", 0, "remote pack version id (default: latest)")
	fs.BoolVar(&s.Curse, "curse", false, "pack id refers to a CurseForge pack")
	fs.StringVar(&s.Side, "side", "client", "install side: client, server or both")
	fs.BoolVar(&s.Optional, "optional", true, "include optional files")
}

func (s *source) provider() modpacks.Provider {
	if s.Curse {
		return modpacks.ProviderCurse
	}
	return modpacks.ProviderFTB
}

// files returns the pack files for the side selected by flags.
func (s *source) files(ctx context.Context, cfg config.Config, paths []string) ([]models.PackFile, error) {
	side, err := pack.ParseSide(s.Side)
	if err != nil {
		return nil, err
	}
	files, err := s.all(ctx, cfg, paths)
	if err != nil {
		return nil, err
	}
	return pack.Filter(files, side, s.Optional), nil
}

func (s *source) all(ctx context.Context, cfg config.Config, paths []string) ([]models.PackFile, error) {
	if s.PackID != 0 {
		if len(paths) > 0 {
			return nil, errors.New("manifest paths cannot be combined with -pack")
		}
		c := &modpacks.Client{HTTP: newClient(cfg), BaseURL: cfg.APIURL}
		return c.VersionFiles(ctx, s.provider(), uint32(s.PackID), uint32(s.VersionID))
	}
	if len(paths) <= 0 {
		paths = []string{defaultManifest}
	}
	return parseManifests(paths)
}

// parseManifests loads local manifests, printing diagnostics for all
// files to stderr.
func parseManifests(paths []string) ([]models.PackFile, error) {
	parser := hclparse.NewParser()
	ms, diags := pack.Parse(parser, paths)
	if len(diags) > 0 {
		diagWr, _ := newDiagWr(parser)
		if err := diagWr.WriteDiagnostics(diags); err != nil {
			log.Warn().Err(err).Msg("write diags")
		}
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("%d manifest errors", len(diags.Errs()))
	}
	return pack.Files(ms)
}

func newDiagWr(p *hclparse.Parser) (diagWr hcl.DiagnosticWriter, color bool) {
	files := p.Files()
	stderr := os.Stderr
	fd := int(stderr.Fd())
	istty, color := fdinfo(fd)
	if !istty {
		return hcl.NewDiagnosticTextWriter(stderr, files, 80, color), color
	}
	width := uint(80)
	if w, _, err := term.GetSize(fd); err != nil {
		log.Debug().Err(err).Msg("get term size")
	} else if w > 0 {
		width = uint(w)
	}
	return hcl.NewDiagnosticTextWriter(stderr, files, width, color), color
}

func fdinfo(fd int) (istty, color bool) {
	istty = term.IsTerminal(fd)
	if istty {
		color = true
	}
	// See https://no-color.org
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		color = false
	}
	return
}

// writeFile replaces the file at fpath with data.
func writeFile(fpath string, data []byte) error {
	fs := osfs.New(filepath.Dir(fpath))
	return replaceFile(fs, filepath.Base(fpath), data)
}

// replaceFile writes data to a temporary file next to name and renames it
// over name, so readers never see a partial file.
func replaceFile(fs billy.Filesystem, name string, data []byte) (err error) {
	f, err := util.TempFile(fs, path.Dir(name), "."+path.Base(name)+".tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = fs.Remove(tmp)
		}
	}()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return fs.Rename(tmp, name)
}
