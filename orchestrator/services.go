package orchestrator

import (
	"context"
	"fmt"

	"github.com/maastricht-university/survey-audio/clients"
	cfg "github.com/maastricht-university/survey-audio/config"
)

// Credentials collects the secrets named in c into a clients.Credentials.
func Credentials(c *cfg.Root) (clients.Credentials, error) {
	creds := clients.Credentials{
		GoogleAPIKey: c.Credentials.GoogleAPIKey,
		OpenAIKey:    c.Credentials.OpenAIAPIKey,
	}
	if err := creds.LoadCredentialsFile(c.Credentials.GoogleCredentialsFile); err != nil {
		return creds, err
	}
	return creds, nil
}

// NewSpeech builds the speech backend selected by transcription.backend.
func NewSpeech(ctx context.Context, c *cfg.Root, h *clients.HTTP, creds clients.Credentials) (SpeechService, error) {
	switch c.Transcription.Backend {
	case cfg.BackendGoogle:
		return clients.NewGoogleSpeech(ctx, h, c.Services.Speech.URL, creds)
	case cfg.BackendWhisper:
		return clients.NewWhisperSpeech(c.Services.Whisper.URL, c.Services.Whisper.Model, creds)
	case cfg.BackendASR:
		if c.Services.ASR.URL == "" {
			return nil, fmt.Errorf("services.asr.url is required for the asr backend")
		}
		return clients.NewASRSpeech(h, c.Services.ASR.URL), nil
	default:
		return nil, fmt.Errorf("unknown transcription backend %q", c.Transcription.Backend)
	}
}

// SentimentOptions registers every analysis method that can be built from c.
// Google needs credentials, the emotion service needs a URL; methods that
// cannot be built are left out and reported as unsupported at call time.
func SentimentOptions(ctx context.Context, c *cfg.Root, h *clients.HTTP, creds clients.Credentials) []Option {
	var opts []Option
	if g, err := clients.NewGoogleLanguage(ctx, h, c.Services.Language.URL, creds); err == nil {
		opts = append(opts, WithSentiment(cfg.MethodGoogle, g))
	}
	if c.Services.Emotion.URL != "" {
		opts = append(opts, WithSentiment(cfg.MethodEmotion, clients.NewEmotionAnalyzer(h, c.Services.Emotion.URL)))
	}
	return opts
}
