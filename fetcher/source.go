package fetcher

import (
	"context"
	"errors"
	"io"

	"github.com/tie/modinstaller/models"
)

var (
	ErrDiscarded = errors.New("pending fetch was discarded")
	ErrAwaited   = errors.New("pending fetch was already awaited")
)

// Pending is a GET request that has not been sent yet. Nothing touches the
// network until Await is called, so a discarded Pending costs nothing.
//
// A Pending is owned by one goroutine at a time.
type Pending struct {
	client    *Client
	url       string
	sent      bool
	discarded bool
}

// URL returns the request location.
func (p *Pending) URL() string {
	return p.url
}

// Await sends the request and returns the response body.
// It may be called at most once.
func (p *Pending) Await(ctx context.Context) (io.ReadCloser, error) {
	if p.discarded {
		return nil, ErrDiscarded
	}
	if p.sent {
		return nil, ErrAwaited
	}
	p.sent = true
	return p.client.Get(ctx, p.url)
}

// Discard drops the request. It is never sent afterwards.
func (p *Pending) Discard() {
	p.discarded = true
}

// Sent reports whether Await issued the request.
func (p *Pending) Sent() bool {
	return p.sent
}

// Request pairs a pack file with its not-yet-sent download.
type Request struct {
	File  models.PackFile
	Fetch *Pending
}

// Source yields one Request per pack file in manifest order. Requests are
// created on demand, one per Next call. A Source is consumed once.
type Source struct {
	client *Client
	files  []models.PackFile
	next   int
}

// NewSource returns a Source over files.
func NewSource(c *Client, files []models.PackFile) *Source {
	return &Source{
		client: c,
		files:  append([]models.PackFile(nil), files...),
	}
}

// Next returns the next Request. It reports false once all files have
// been returned.
func (s *Source) Next() (Request, bool) {
	if s.next >= len(s.files) {
		return Request{}, false
	}
	f := s.files[s.next]
	s.next++
	return Request{
		File: f,
		Fetch: &Pending{
			client: s.client,
			url:    f.URL,
		},
	}, true
}

// Len returns the total number of files in the source.
func (s *Source) Len() int {
	return len(s.files)
}
