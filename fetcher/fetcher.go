// Package fetcher acquires pack files into the install root, reusing local
// copies that pass the integrity check and downloading the rest.
package fetcher

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"

	"github.com/tie/modinstaller/integrity"
	"github.com/tie/modinstaller/models"
)

var ErrUnsafePath = errors.New("path escapes install root")

const copyBufferSize = 32 * 1024

// Acquirer runs the acquisition stage for single requests. It is safe for
// concurrent use as long as requests target distinct paths and Files is
// itself safe for concurrent use.
type Acquirer struct {
	// Files is the install root. osfs may be shared between goroutines;
	// memfs may not.
	Files billy.Filesystem

	// Timeout bounds the download of one file. Zero means no timeout.
	Timeout time.Duration

	Logger zerolog.Logger
}

// Acquire makes the file of req available under the install root.
//
// A local copy that passes the integrity check is opened as is and the
// pending download is discarded without being sent. Otherwise the file is
// downloaded and written in place. Failures are returned as a failed
// Outcome and never affect other requests.
func (a *Acquirer) Acquire(ctx context.Context, req Request) models.Outcome {
	f := req.File
	name := f.Path()
	if !iofs.ValidPath(name) {
		req.Fetch.Discard()
		return models.Failed(&models.Error{Kind: models.KindIO, File: name, Err: ErrUnsafePath})
	}

	if integrity.IsValid(a.Files, name, f.Size, f.SHA1) {
		req.Fetch.Discard()
		file, err := a.Files.Open(name)
		if err != nil {
			return models.Failed(&models.Error{Kind: models.KindIO, File: name, Err: err})
		}
		a.Logger.Debug().Str("file", name).Msg("local copy is valid")
		return models.Outcome{
			Status: models.StatusAlreadyValid,
			Path:   name,
			File:   file,
		}
	}

	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	a.Logger.Debug().Str("file", name).Str("url", req.Fetch.URL()).Msg("fetch")
	body, err := req.Fetch.Await(ctx)
	if err != nil {
		return models.Failed(&models.Error{Kind: models.KindNetwork, File: name, Err: err})
	}
	defer func() {
		err := body.Close()
		if err != nil {
			a.Logger.Debug().Err(err).Str("url", req.Fetch.URL()).Msg("close response body")
		}
	}()

	h, ferr := a.writeFile(name, body)
	if ferr != nil {
		return models.Failed(ferr)
	}
	sum := hex.EncodeToString(h.Sum(nil))
	if !integrity.Matches(h, f.SHA1) {
		a.Logger.Warn().
			Str("file", name).
			Str("want", f.SHA1).
			Str("got", sum).
			Msg("fetched file does not match manifest digest")
	}

	file, err := a.Files.Open(name)
	if err != nil {
		return models.Failed(&models.Error{Kind: models.KindIO, File: name, Err: err})
	}
	return models.Outcome{
		Status: models.StatusFetched,
		Path:   name,
		File:   file,
		SHA1:   sum,
	}
}

// writeFile streams r to name, creating missing parent directories, and
// returns the hash of the written bytes.
func (a *Acquirer) writeFile(name string, r io.Reader) (h hash.Hash, ferr *models.Error) {
	ioErr := func(err error) *models.Error {
		return &models.Error{Kind: models.KindIO, File: name, Err: err}
	}

	if dir := path.Dir(name); dir != "." {
		if err := a.Files.MkdirAll(dir, 0755); err != nil {
			return nil, ioErr(err)
		}
	}

	flags := os.O_WRONLY | os.O_TRUNC | os.O_CREATE
	f, err := a.Files.OpenFile(name, flags, 0644)
	if err != nil {
		return nil, ioErr(err)
	}
	defer func() {
		cerr := f.Close()
		if ferr == nil && cerr != nil {
			ferr = ioErr(cerr)
		}
	}()

	h = integrity.New()
	w := bufio.NewWriterSize(io.MultiWriter(f, h), copyBufferSize)
	br := &bodyReader{r: r}
	if _, err := io.Copy(w, br); err != nil {
		if br.err != nil {
			return nil, &models.Error{Kind: models.KindNetwork, File: name, Err: fmt.Errorf("read body: %w", br.err)}
		}
		return nil, ioErr(err)
	}
	if err := w.Flush(); err != nil {
		return nil, ioErr(err)
	}
	return h, nil
}

// bodyReader records read errors so they can be told apart from write
// errors after io.Copy returns.
type bodyReader struct {
	r   io.Reader
	err error
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && err != io.EOF {
		b.err = err
	}
	return n, err
}
