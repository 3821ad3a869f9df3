package orchestrator

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maastricht-university/survey-audio/audio"
	"github.com/maastricht-university/survey-audio/clients"
	cfg "github.com/maastricht-university/survey-audio/config"
)

// fakeSpeech answers "t<index>" for a chunk named <base>_<index>.wav and
// records how many calls overlap.
type fakeSpeech struct {
	delay func(idx int) time.Duration
	fail  func(idx, attempt int) error

	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32

	mu       sync.Mutex
	attempts map[int]int
}

func chunkIndex(name string) int {
	name = strings.TrimSuffix(name, ".wav")
	i, _ := strconv.Atoi(name[strings.LastIndex(name, "_")+1:])
	return i
}

func (f *fakeSpeech) Recognize(ctx context.Context, in clients.SpeechInput) (string, error) {
	f.calls.Add(1)
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		prev := f.maxSeen.Load()
		if cur <= prev || f.maxSeen.CompareAndSwap(prev, cur) {
			break
		}
	}

	idx := chunkIndex(in.Name)
	f.mu.Lock()
	if f.attempts == nil {
		f.attempts = map[int]int{}
	}
	attempt := f.attempts[idx]
	f.attempts[idx]++
	f.mu.Unlock()

	if f.delay != nil {
		select {
		case <-time.After(f.delay(idx)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.fail != nil {
		if err := f.fail(idx, attempt); err != nil {
			return "", err
		}
	}
	return "t" + strconv.Itoa(idx), nil
}

type fakeSentiment struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSentiment) Analyze(ctx context.Context, text string) (*clients.Analysis, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &clients.Analysis{DocumentSentiment: &clients.Sentiment{Score: 0.5, Magnitude: float64(len(text))}}, nil
}

func silentTrack(d time.Duration) *audio.Track {
	const rate = 1000
	return &audio.Track{
		SampleRate: rate,
		Channels:   1,
		BitDepth:   16,
		Samples:    make([]int, int(d/time.Millisecond)),
	}
}

func testConfig() *cfg.Root {
	c := cfg.Default()
	c.Transcription.RetryBackoff = time.Millisecond
	return c
}

func clipsFor(n int) []audio.Clip {
	clips := make([]audio.Clip, n)
	for i := range clips {
		clips[i] = audio.Clip{Window: audio.Window{Index: i, Start: time.Duration(i) * time.Second, End: time.Duration(i+1) * time.Second}}
	}
	return clips
}
