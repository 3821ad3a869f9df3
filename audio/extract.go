package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
)

const wavFormatPCM = 1

// Clip is an independent copy of one window of a track.
type Clip struct {
	Window
	SampleRate int
	Channels   int
	Samples    []int
}

// Extract copies the samples of window w out of t. The track is only read.
func Extract(t *Track, w Window) (Clip, error) {
	if t == nil {
		return Clip{}, fmt.Errorf("%w: nil track", ErrExtraction)
	}
	total := t.Duration()
	if w.Start < 0 || w.End > total || w.Start >= w.End {
		return Clip{}, fmt.Errorf("%w: window %s outside [0, %s]", ErrExtraction, w, total)
	}

	frames := t.Frames()
	from := durationToFrame(w.Start, t.SampleRate)
	to := durationToFrame(w.End, t.SampleRate)
	if w.End == total {
		// Duration() truncates, so the final window must reach the last frame.
		to = frames
	}
	to = min(to, frames)
	if from >= to {
		return Clip{}, fmt.Errorf("%w: window %s covers no samples", ErrExtraction, w)
	}

	samples := make([]int, (to-from)*t.Channels)
	copy(samples, t.Samples[from*t.Channels:to*t.Channels])
	return Clip{
		Window:     w,
		SampleRate: t.SampleRate,
		Channels:   t.Channels,
		Samples:    samples,
	}, nil
}

// Whole wraps an entire track as a single clip with index 0. The clip
// shares the track's samples; clips are never written to.
func Whole(t *Track) Clip {
	return Clip{
		Window:     Window{Index: 0, Start: 0, End: t.Duration()},
		SampleRate: t.SampleRate,
		Channels:   t.Channels,
		Samples:    t.Samples,
	}
}

// WAV encodes the clip as a 16-bit PCM RIFF file held in memory.
func (c Clip) WAV() ([]byte, error) {
	ws := &writerseeker.WriterSeeker{}
	enc := wav.NewEncoder(ws, c.SampleRate, targetBitDepth, c.Channels, wavFormatPCM)
	if err := enc.Write(intBuffer(c.Samples, c.SampleRate, c.Channels)); err != nil {
		return nil, fmt.Errorf("encoder write buffer: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoder close: %w", err)
	}
	b, err := io.ReadAll(ws.Reader())
	if err != nil {
		return nil, fmt.Errorf("reading wav into memory: %w", err)
	}
	return b, nil
}

// WriteWAV encodes the clip straight to a file at path.
func (c Clip) WriteWAV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := wav.NewEncoder(f, c.SampleRate, targetBitDepth, c.Channels, wavFormatPCM)
	if err := enc.Write(intBuffer(c.Samples, c.SampleRate, c.Channels)); err != nil {
		f.Close()
		return fmt.Errorf("encoder write buffer: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("encoder close: %w", err)
	}
	return f.Close()
}
