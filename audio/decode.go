package audio

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
)

const targetBitDepth = 16

// Format names accepted by Decode.
const (
	FormatWAV  = "wav"
	FormatMP3  = "mp3"
	FormatOGG  = "ogg"
	FormatFLAC = "flac"
)

// FormatFromPath derives the source format from a file extension.
func FormatFromPath(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// Decode reads an encoded recording and normalizes it to 16-bit PCM.
func Decode(r io.Reader, format string) (*Track, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case FormatWAV:
		return decodeWAV(r)
	case FormatMP3:
		s, f, err := mp3.Decode(io.NopCloser(r))
		if err != nil {
			return nil, fmt.Errorf("%w: mp3: %v", ErrDecode, err)
		}
		return drain(s, f)
	case FormatOGG:
		s, f, err := vorbis.Decode(io.NopCloser(r))
		if err != nil {
			return nil, fmt.Errorf("%w: ogg: %v", ErrDecode, err)
		}
		return drain(s, f)
	case FormatFLAC:
		s, f, err := flac.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("%w: flac: %v", ErrDecode, err)
		}
		return drain(s, f)
	default:
		return nil, fmt.Errorf("%w: %w %q", ErrDecode, ErrUnsupportedFormat, format)
	}
}

func decodeWAV(r io.Reader) (*Track, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: wav read: %v", ErrDecode, err)
	}
	d := wav.NewDecoder(bytes.NewReader(raw))
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid wav file", ErrDecode)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: wav pcm: %v", ErrDecode, err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: wav header has no format", ErrDecode)
	}
	return &Track{
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		BitDepth:   targetBitDepth,
		Samples:    toBitDepth16(buf.Data, int(d.BitDepth)),
	}, nil
}

func toBitDepth16(in []int, depth int) []int {
	out := make([]int, len(in))
	for i, v := range in {
		switch {
		case depth == 8:
			// 8-bit PCM is unsigned
			out[i] = (v - 128) << 8
		case depth > targetBitDepth:
			out[i] = v >> (depth - targetBitDepth)
		default:
			out[i] = v
		}
	}
	return out
}

func drain(s beep.StreamSeekCloser, f beep.Format) (*Track, error) {
	defer s.Close()

	channels := f.NumChannels
	if channels <= 0 || channels > 2 {
		channels = 2
	}
	t := &Track{
		SampleRate: int(f.SampleRate),
		Channels:   channels,
		BitDepth:   targetBitDepth,
	}
	if n := s.Len(); n > 0 {
		t.Samples = make([]int, 0, n*channels)
	}

	buf := make([][2]float64, 4096)
	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			t.Samples = append(t.Samples, floatToPCM16(frame[0]))
			if channels == 2 {
				t.Samples = append(t.Samples, floatToPCM16(frame[1]))
			}
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("%w: stream: %v", ErrDecode, err)
	}
	if t.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: missing sample rate", ErrDecode)
	}
	return t, nil
}

func floatToPCM16(v float64) int {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int(v * 32767)
}

// intBuffer exposes a PCM slice in the go-audio representation.
func intBuffer(samples []int, rate, channels int) *goaudio.IntBuffer {
	return &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           samples,
		SourceBitDepth: targetBitDepth,
	}
}
