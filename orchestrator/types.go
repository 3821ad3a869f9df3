package orchestrator

import (
	"context"
	"time"

	"github.com/maastricht-university/survey-audio/audio"
)

type Route string

const (
	RouteShort   Route = "short"
	RouteChunked Route = "chunked"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// ChunkResult is the outcome of transcribing one clip.
type ChunkResult struct {
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Status Status `json:"status"`
	Err    string `json:"error,omitempty"`
	Cause  error  `json:"-"`
}

func succeeded(index int, text string) ChunkResult {
	return ChunkResult{Index: index, Text: text, Status: StatusSuccess}
}

func failed(index int, err error) ChunkResult {
	return ChunkResult{Index: index, Status: StatusFailure, Err: err.Error(), Cause: err}
}

// Transcript is the ordered concatenation of all chunk texts.
type Transcript struct {
	Text   string        `json:"text"`
	Failed []int         `json:"failed_chunks,omitempty"`
	Chunks int           `json:"chunks"`
	Route  Route         `json:"route,omitempty"`
	Length time.Duration `json:"duration"`
}

// TranscribeFunc transcribes a single clip; it must report failures in the
// returned ChunkResult instead of panicking.
type TranscribeFunc func(ctx context.Context, clip audio.Clip) ChunkResult
