package install

import (
	"context"
	"sync"

	"github.com/tie/modinstaller/fetcher"
	"github.com/tie/modinstaller/models"
)

// DefaultConcurrency is the number of files acquired at once when no limit
// is configured.
const DefaultConcurrency = 60

// Source yields requests one at a time. *fetcher.Source implements it.
type Source interface {
	Next() (fetcher.Request, bool)
}

// Stage acquires the file of a single request.
type Stage func(context.Context, fetcher.Request) models.Outcome

// Completion is a finished stage.
type Completion struct {
	File    models.PackFile
	Outcome models.Outcome
}

// Schedule runs stage for every request of src with at most limit stages in
// flight. A request is pulled from src only once a slot is free, so src
// never has more than limit requests outstanding.
//
// Completions are delivered in the order the stages finish. The returned
// channel is closed after src is exhausted and every stage has delivered;
// the caller must drain it.
func Schedule(ctx context.Context, src Source, limit int, stage Stage) <-chan Completion {
	limit = effectiveLimit(limit)
	out := make(chan Completion)
	go func() {
		defer close(out)
		slots := make(chan struct{}, limit)
		var wg sync.WaitGroup
		for {
			slots <- struct{}{}
			req, ok := src.Next()
			if !ok {
				break
			}
			wg.Add(1)
			go func(req fetcher.Request) {
				defer wg.Done()
				o := stage(ctx, req)
				out <- Completion{File: req.File, Outcome: o}
				<-slots
			}(req)
		}
		wg.Wait()
	}()
	return out
}

func effectiveLimit(limit int) int {
	if limit <= 0 {
		return DefaultConcurrency
	}
	return limit
}
