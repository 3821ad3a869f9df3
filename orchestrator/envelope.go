package orchestrator

import (
	"encoding/json"
	"fmt"

	"github.com/maastricht-university/survey-audio/clients"
)

type envelopeKind int

const (
	kindError envelopeKind = iota
	kindAudio
	kindText
)

// Envelope is the JSON document returned to callers. It is either an audio
// result, a text result or an error, never a mix.
type Envelope struct {
	AudioText     string
	AudioAnalysis *clients.Analysis
	FailedChunks  []int
	TextAnalysis  *clients.Analysis
	Error         string
	Code          string

	kind envelopeKind
}

func audioEnvelope(t Transcript, a *clients.Analysis) Envelope {
	if a == nil {
		a = &clients.Analysis{}
	}
	return Envelope{AudioText: t.Text, AudioAnalysis: a, FailedChunks: t.Failed, kind: kindAudio}
}

func textEnvelope(a *clients.Analysis) Envelope {
	return Envelope{TextAnalysis: a, kind: kindText}
}

func errorEnvelope(code string, format string, args ...any) Envelope {
	return Envelope{Error: fmt.Sprintf(format, args...), Code: code, kind: kindError}
}

func (e Envelope) Failed() bool { return e.kind == kindError }

func (e Envelope) MarshalJSON() ([]byte, error) {
	switch e.kind {
	case kindAudio:
		return json.Marshal(struct {
			AudioText     string            `json:"audio_text"`
			AudioAnalysis *clients.Analysis `json:"audio_analysis"`
			FailedChunks  []int             `json:"failed_chunks,omitempty"`
		}{e.AudioText, e.AudioAnalysis, e.FailedChunks})
	case kindText:
		return json.Marshal(struct {
			TextAnalysis *clients.Analysis `json:"text_analysis"`
		}{e.TextAnalysis})
	default:
		return json.Marshal(struct {
			Error string `json:"error"`
			Code  string `json:"code,omitempty"`
		}{e.Error, e.Code})
	}
}
