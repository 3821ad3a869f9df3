package orchestrator

import (
	"errors"

	"github.com/maastricht-university/survey-audio/audio"
)

var (
	ErrAssembly = errors.New("assemble transcript")
	ErrTimeout  = errors.New("chunk not transcribed before deadline")
	ErrNoSpeech = errors.New("every chunk failed to transcribe")
)

// Error codes carried by error envelopes.
const (
	CodeInput         = "input"
	CodeDecode        = "decode"
	CodeExtraction    = "extraction"
	CodeAssembly      = "assembly"
	CodeTranscription = "transcription"
	CodeAnalysis      = "analysis"
)

func codeFor(err error) string {
	switch {
	case errors.Is(err, audio.ErrDecode):
		return CodeDecode
	case errors.Is(err, audio.ErrExtraction):
		return CodeExtraction
	case errors.Is(err, ErrAssembly):
		return CodeAssembly
	default:
		return CodeTranscription
	}
}
