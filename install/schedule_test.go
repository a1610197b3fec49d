package install

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tie/modinstaller/fetcher"
	"github.com/tie/modinstaller/models"
)

// countingSource yields n requests and tracks how many were handed out but
// not yet completed.
type countingSource struct {
	n           int
	next        int
	outstanding *atomic.Int32
	peak        int32
}

func (s *countingSource) Next() (fetcher.Request, bool) {
	if s.next >= s.n {
		return fetcher.Request{}, false
	}
	s.next++
	if o := s.outstanding.Add(1); o > s.peak {
		s.peak = o
	}
	return fetcher.Request{File: models.PackFile{Name: fmt.Sprint(s.next)}}, true
}

func TestScheduleLimitsOutstandingRequests(t *testing.T) {
	var outstanding atomic.Int32
	src := &countingSource{n: 10, outstanding: &outstanding}
	stage := func(_ context.Context, req fetcher.Request) models.Outcome {
		time.Sleep(5 * time.Millisecond)
		outstanding.Add(-1)
		return models.Outcome{Status: models.StatusFetched, Path: req.File.Name}
	}

	seen := make(map[string]bool)
	for c := range Schedule(context.Background(), src, 3, stage) {
		assert.Equal(t, c.File.Name, c.Outcome.Path)
		seen[c.File.Name] = true
	}
	assert.Len(t, seen, 10)
	assert.LessOrEqual(t, src.peak, int32(3))
}

func TestScheduleSerialWithLimitOne(t *testing.T) {
	var outstanding atomic.Int32
	src := &countingSource{n: 4, outstanding: &outstanding}
	stage := func(_ context.Context, req fetcher.Request) models.Outcome {
		outstanding.Add(-1)
		return models.Outcome{Status: models.StatusFetched, Path: req.File.Name}
	}

	var order []string
	for c := range Schedule(context.Background(), src, 1, stage) {
		order = append(order, c.File.Name)
	}
	assert.Equal(t, []string{"1", "2", "3", "4"}, order)
	assert.Equal(t, int32(1), src.peak)
}

func TestScheduleEmptySource(t *testing.T) {
	var outstanding atomic.Int32
	src := &countingSource{outstanding: &outstanding}
	called := false
	stage := func(context.Context, fetcher.Request) models.Outcome {
		called = true
		return models.Outcome{}
	}
	for range Schedule(context.Background(), src, 0, stage) {
		t.Fatal("unexpected completion")
	}
	assert.False(t, called)
}
