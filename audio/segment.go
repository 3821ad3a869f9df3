package audio

import (
	"fmt"
	"time"
)

// Window is one contiguous slice [Start, End) of a recording.
type Window struct {
	Index int           `json:"index"`
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
}

func (w Window) Duration() time.Duration { return w.End - w.Start }

func (w Window) String() string {
	return fmt.Sprintf("chunk %d: %s-%s", w.Index, w.Start, w.End)
}

// Segment partitions [0, total) into windows of length chunk. The last
// window holds the remainder and is kept even when shorter than chunk.
func Segment(total, chunk time.Duration) ([]Window, error) {
	if chunk <= 0 {
		return nil, fmt.Errorf("segment: chunk duration must be positive, got %s", chunk)
	}
	if total < 0 {
		return nil, fmt.Errorf("segment: negative total duration %s", total)
	}

	n := int(total / chunk)
	if total%chunk != 0 {
		n++
	}
	out := make([]Window, 0, n)
	for i, t0 := 0, time.Duration(0); t0 < total; i, t0 = i+1, t0+chunk {
		out = append(out, Window{Index: i, Start: t0, End: min(t0+chunk, total)})
	}
	return out, nil
}
