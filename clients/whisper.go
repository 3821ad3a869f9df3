package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// WhisperSpeech transcribes through the OpenAI audio transcription API.
type WhisperSpeech struct {
	c     *openai.Client
	model string
}

// NewWhisperSpeech builds a client; baseURL may point at any OpenAI-compatible server.
func NewWhisperSpeech(baseURL, model string, creds Credentials) (*WhisperSpeech, error) {
	if creds.OpenAIKey == "" {
		return nil, fmt.Errorf("whisper: openai api key required")
	}
	cfg := openai.DefaultConfig(creds.OpenAIKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperSpeech{c: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (w *WhisperSpeech) Recognize(ctx context.Context, in SpeechInput) (string, error) {
	name := in.Name
	if name == "" {
		name = "audio.wav"
	}
	resp, err := w.c.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: name,
		Reader:   bytes.NewReader(in.WAV),
		Language: languageTag(in.Language),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", whisperError(err)
	}
	return strings.TrimSpace(resp.Text), nil
}

func whisperError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ServiceError{Service: "whisper", StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ServiceError{Service: "whisper", StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return &ServiceError{Service: "whisper", Err: err}
}
