package orchestrator

import (
	"context"
	"fmt"

	"github.com/maastricht-university/survey-audio/audio"
)

type tagged struct {
	pos int
	res ChunkResult
}

// Dispatch runs fn over every clip with at most limit calls in flight and
// returns one result per clip, in clip order. It blocks until every clip
// has a result or ctx is done; in the latter case clips without a result
// are marked failed with ErrTimeout and in-flight calls are abandoned.
func Dispatch(ctx context.Context, clips []audio.Clip, limit int, fn TranscribeFunc) []ChunkResult {
	n := len(clips)
	results := make([]ChunkResult, n)
	if n == 0 {
		return results
	}
	if limit <= 0 {
		limit = 1
	}

	// buffered so abandoned workers can always deliver and exit
	done := make(chan tagged, n)
	sem := make(chan struct{}, limit)

	go func() {
		for i, c := range clips {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			if ctx.Err() != nil {
				<-sem
				return
			}
			go func(i int, c audio.Clip) {
				defer func() { <-sem }()
				done <- tagged{pos: i, res: safeCall(ctx, fn, c)}
			}(i, c)
		}
	}()

	have := make([]bool, n)
	store := func(t tagged) {
		t.res.Index = clips[t.pos].Index
		results[t.pos] = t.res
		have[t.pos] = true
	}
	for received := 0; received < n; received++ {
		select {
		case t := <-done:
			store(t)
		case <-ctx.Done():
			drain(done, store)
			for i := range clips {
				if !have[i] {
					results[i] = failed(clips[i].Index, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err()))
				}
			}
			return results
		}
	}
	return results
}

// drain collects results that were delivered before cancellation was seen.
func drain(done <-chan tagged, store func(tagged)) {
	for {
		select {
		case t := <-done:
			store(t)
		default:
			return
		}
	}
}

func safeCall(ctx context.Context, fn TranscribeFunc, c audio.Clip) (res ChunkResult) {
	defer func() {
		if r := recover(); r != nil {
			res = failed(c.Index, fmt.Errorf("transcribe chunk %d: panic: %v", c.Index, r))
		}
	}()
	return fn(ctx, c)
}
