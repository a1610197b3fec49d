// Package install drives the acquisition pipeline: pack files are acquired
// with bounded concurrency, override bundles are unpacked, and every
// completion is handed to a Reporter.
package install

import (
	"context"
	"errors"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"

	"github.com/tie/modinstaller/fetcher"
	"github.com/tie/modinstaller/models"
	"github.com/tie/modinstaller/overrides"
)

var ErrNoFilesystem = errors.New("install: no install root")

// Reporter receives pipeline events. Both methods are called from a single
// goroutine: OnItemComplete exactly once per pack file, then OnAllComplete
// once. The Outcome's File handle is closed after OnItemComplete returns.
type Reporter interface {
	OnItemComplete(f models.PackFile, o models.Outcome)
	OnAllComplete(total int)
}

// Summary counts the outcomes of one run.
type Summary struct {
	Total    int
	Valid    int
	Fetched  int
	Failed   int
	Unpacked int

	Failures   []*models.Error
	Unresolved []models.ModRef
}

type Installer struct {
	// Files is the install root. Files are written from several goroutines,
	// so it must be safe for concurrent use: osfs is, memfs is not.
	Files billy.Filesystem

	// Client downloads pack files. A client with default options is used
	// when nil.
	Client *fetcher.Client

	// Concurrency caps the number of files acquired at once.
	// Default: DefaultConcurrency
	Concurrency int

	// ItemTimeout bounds the download of a single file. Zero means none.
	ItemTimeout time.Duration

	Reporter Reporter
	Logger   zerolog.Logger
}

// Install acquires files into the install root. Per-file failures are
// reported and counted but do not stop the run; the returned error is
// non-nil only when the run could not start.
func (in *Installer) Install(ctx context.Context, files []models.PackFile) (Summary, error) {
	var sum Summary
	if in.Files == nil {
		return sum, ErrNoFilesystem
	}
	client := in.Client
	if client == nil {
		client = fetcher.NewClient(fetcher.DefaultOptions())
	}
	acq := &fetcher.Acquirer{
		Files:   in.Files,
		Timeout: in.ItemTimeout,
		Logger:  in.Logger,
	}
	unpacker := &overrides.Unpacker{
		Files:  in.Files,
		Logger: in.Logger,
	}

	in.Logger.Info().
		Int("files", len(files)).
		Int("concurrency", effectiveLimit(in.Concurrency)).
		Msg("install started")
	start := time.Now()

	src := fetcher.NewSource(client, files)
	for c := range Schedule(ctx, src, in.Concurrency, acq.Acquire) {
		handle := c.Outcome.File
		o := c.Outcome
		if o.OK() && c.File.Kind == models.KindOverrides {
			o = in.unpack(unpacker, o)
		}
		sum.add(o)
		if in.Reporter != nil {
			in.Reporter.OnItemComplete(c.File, o)
		}
		if handle != nil {
			if err := handle.Close(); err != nil {
				in.Logger.Debug().Err(err).Str("file", c.Outcome.Path).Msg("close")
			}
		}
	}
	if in.Reporter != nil {
		in.Reporter.OnAllComplete(sum.Total)
	}

	in.Logger.Info().
		Int("total", sum.Total).
		Int("valid", sum.Valid).
		Int("fetched", sum.Fetched).
		Int("failed", sum.Failed).
		Dur("duration", time.Since(start)).
		Msg("install finished")
	return sum, nil
}

// unpack installs the override bundle referenced by o. A failed unpack
// turns the outcome into a failure for the bundle only.
func (in *Installer) unpack(u *overrides.Unpacker, o models.Outcome) models.Outcome {
	fi, err := in.Files.Stat(o.Path)
	if err != nil {
		return models.Failed(&models.Error{Kind: models.KindIO, File: o.Path, Err: err})
	}
	res, err := u.Unpack(o.Path, o.File, fi.Size())
	if err != nil {
		var fe *models.Error
		if !errors.As(err, &fe) {
			fe = &models.Error{Kind: models.KindArchive, File: o.Path, Err: err}
		}
		return models.Failed(fe)
	}

	for _, ref := range res.Unresolved {
		ev := in.Logger.Info()
		if ref.Required {
			ev = in.Logger.Warn()
		}
		ev.Str("bundle", o.Path).
			Uint32("project", ref.ProjectID).
			Uint32("file", ref.FileID).
			Bool("required", ref.Required).
			Msg("mod reference in override bundle was not installed")
	}
	o.Unpacked = &res
	return o
}

func (s *Summary) add(o models.Outcome) {
	s.Total++
	switch o.Status {
	case models.StatusAlreadyValid:
		s.Valid++
	case models.StatusFetched:
		s.Fetched++
	default:
		s.Failed++
		if o.Err != nil {
			s.Failures = append(s.Failures, o.Err)
		}
	}
	if o.Unpacked != nil {
		s.Unpacked++
		s.Unresolved = append(s.Unresolved, o.Unpacked.Unresolved...)
	}
}
