package audio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// rampTrack builds a mono track whose sample values equal their frame index
// modulo 30000 so copies can be checked positionally.
func rampTrack(rate int, d time.Duration) *Track {
	frames := durationToFrame(d, rate)
	samples := make([]int, frames)
	for i := range samples {
		samples[i] = i % 30000
	}
	return &Track{SampleRate: rate, Channels: 1, BitDepth: 16, Samples: samples}
}

func TestExtractCopiesWindow(t *testing.T) {
	track := rampTrack(8000, 10*time.Second)
	before := append([]int(nil), track.Samples...)

	windows, err := Segment(track.Duration(), 3*time.Second)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	var total int
	for _, w := range windows {
		clip, err := Extract(track, w)
		if err != nil {
			t.Fatalf("Extract %v: %v", w, err)
		}
		wantFrames := durationToFrame(w.Duration(), track.SampleRate)
		if got := len(clip.Samples); got < wantFrames-1 || got > wantFrames+1 {
			t.Errorf("%v: got %d frames, want about %d", w, got, wantFrames)
		}
		from := durationToFrame(w.Start, track.SampleRate)
		if clip.Samples[0] != track.Samples[from] {
			t.Errorf("%v: first sample %d, want %d", w, clip.Samples[0], track.Samples[from])
		}
		clip.Samples[0] = -1
		total += len(clip.Samples)
	}
	if total != len(track.Samples) {
		t.Errorf("clips cover %d samples, track has %d", total, len(track.Samples))
	}
	for i := range before {
		if track.Samples[i] != before[i] {
			t.Fatalf("track mutated at sample %d", i)
		}
	}
}

func TestExtractOddChunkLengthsCoverTrack(t *testing.T) {
	tests := []struct {
		name   string
		rate   int
		frames int
		chunk  time.Duration
	}{
		{"44.1kHz 45005ms", 44100, 1984721, 45005 * time.Millisecond},
		{"44.1kHz 6ms", 44100, 265, 6 * time.Millisecond},
		{"22.05kHz 45001ms", 22050, 22050*100 + 7, 45001 * time.Millisecond},
		{"11.025kHz 1003ms", 11025, 11025*5 + 3, 1003 * time.Millisecond},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			track := &Track{SampleRate: tc.rate, Channels: 1, BitDepth: 16, Samples: make([]int, tc.frames)}
			windows, err := Segment(track.Duration(), tc.chunk)
			if err != nil {
				t.Fatalf("Segment: %v", err)
			}
			var total int
			for _, w := range windows {
				clip, err := Extract(track, w)
				if err != nil {
					t.Fatalf("Extract %v: %v", w, err)
				}
				total += len(clip.Samples)
			}
			if total != track.Frames() {
				t.Errorf("clips cover %d frames, track has %d", total, track.Frames())
			}
		})
	}
}

func TestExtractStereoKeepsFrames(t *testing.T) {
	track := &Track{SampleRate: 1000, Channels: 2, BitDepth: 16, Samples: make([]int, 2*2000)}
	for i := range track.Samples {
		track.Samples[i] = i
	}
	clip, err := Extract(track, Window{Index: 1, Start: 500 * time.Millisecond, End: time.Second})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(clip.Samples) != 1000 {
		t.Fatalf("got %d samples, want 1000", len(clip.Samples))
	}
	if clip.Samples[0] != 1000 || clip.Samples[1] != 1001 {
		t.Errorf("unexpected first frame %v", clip.Samples[:2])
	}
	if clip.Index != 1 || clip.Channels != 2 {
		t.Errorf("clip metadata not carried: %+v", clip.Window)
	}
}

func TestExtractRejectsOutOfBounds(t *testing.T) {
	track := rampTrack(8000, 2*time.Second)
	tests := []Window{
		{Start: -time.Millisecond, End: time.Second},
		{Start: time.Second, End: 3 * time.Second},
		{Start: time.Second, End: time.Second},
		{Start: 2 * time.Second, End: time.Second},
	}
	for _, w := range tests {
		if _, err := Extract(track, w); !errors.Is(err, ErrExtraction) {
			t.Errorf("Extract(%v) err = %v, want ErrExtraction", w, err)
		}
	}
	if _, err := Extract(nil, Window{End: time.Second}); !errors.Is(err, ErrExtraction) {
		t.Errorf("nil track err = %v", err)
	}
}

func TestClipWAVRoundTrip(t *testing.T) {
	track := rampTrack(16000, 1500*time.Millisecond)
	clip, err := Extract(track, Window{Start: 0, End: track.Duration()})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	b, err := clip.WAV()
	if err != nil {
		t.Fatalf("WAV: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("RIFF")) {
		t.Fatalf("missing RIFF header")
	}

	decoded, err := Decode(bytes.NewReader(b), FormatWAV)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.SampleRate != 16000 || decoded.Channels != 1 {
		t.Errorf("format = %d Hz x%d", decoded.SampleRate, decoded.Channels)
	}
	if len(decoded.Samples) != len(clip.Samples) {
		t.Fatalf("decoded %d samples, want %d", len(decoded.Samples), len(clip.Samples))
	}
	for i := range clip.Samples {
		if decoded.Samples[i] != clip.Samples[i] {
			t.Fatalf("sample %d = %d, want %d", i, decoded.Samples[i], clip.Samples[i])
		}
	}
	if decoded.Duration() != track.Duration() {
		t.Errorf("duration %s, want %s", decoded.Duration(), track.Duration())
	}
}

func TestClipWriteWAV(t *testing.T) {
	clip := Whole(rampTrack(8000, time.Second))
	path := filepath.Join(t.TempDir(), "chunk.wav")
	if err := clip.WriteWAV(path); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	decoded, err := Decode(f, FormatWAV)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Duration() != time.Second {
		t.Errorf("duration %s, want 1s", decoded.Duration())
	}
}
