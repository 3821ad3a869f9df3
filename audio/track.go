package audio

import (
	"errors"
	"time"
)

var (
	ErrDecode            = errors.New("decode audio")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrExtraction        = errors.New("extract chunk")
)

// Track is a decoded recording normalized to 16-bit interleaved PCM.
// It is never modified after Decode returns, so concurrent readers are safe.
type Track struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Samples    []int // interleaved
}

// Frames is the number of sample frames (one sample per channel).
func (t *Track) Frames() int {
	if t == nil || t.Channels <= 0 {
		return 0
	}
	return len(t.Samples) / t.Channels
}

func (t *Track) Duration() time.Duration {
	if t == nil || t.SampleRate <= 0 {
		return 0
	}
	return framesToDuration(t.Frames(), t.SampleRate)
}

func framesToDuration(frames, rate int) time.Duration {
	return time.Duration(int64(frames) * int64(time.Second) / int64(rate))
}

// durationToFrame returns the frame that contains d. Flooring keeps every
// window start before Frames() for any d < Duration().
func durationToFrame(d time.Duration, rate int) int {
	return int(int64(d) * int64(rate) / int64(time.Second))
}
