package clients

import (
	"context"
	"encoding/base64"
	"strings"
)

const DefaultGoogleSpeechURL = "https://speech.googleapis.com/v1/speech:recognize"

type recognitionConfig struct {
	Encoding          string `json:"encoding"`
	SampleRateHertz   int    `json:"sampleRateHertz,omitempty"`
	AudioChannelCount int    `json:"audioChannelCount,omitempty"`
	LanguageCode      string `json:"languageCode"`
}

type recognizeReq struct {
	Config recognitionConfig `json:"config"`
	Audio  struct {
		Content string `json:"content"`
	} `json:"audio"`
}

type recognizeResp struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

// GoogleSpeech calls the Cloud Speech-to-Text synchronous recognize method.
type GoogleSpeech struct {
	h      *HTTP
	url    string
	apiKey string
}

func NewGoogleSpeech(ctx context.Context, h *HTTP, url string, creds Credentials) (*GoogleSpeech, error) {
	if url == "" {
		url = DefaultGoogleSpeechURL
	}
	authed, err := googleHTTP(ctx, h, creds)
	if err != nil {
		return nil, err
	}
	g := &GoogleSpeech{h: authed, url: url}
	if len(creds.GoogleServiceAccount) == 0 {
		g.apiKey = creds.GoogleAPIKey
	}
	return g, nil
}

func (g *GoogleSpeech) Recognize(ctx context.Context, in SpeechInput) (string, error) {
	var req recognizeReq
	req.Config = recognitionConfig{
		Encoding:        "LINEAR16",
		SampleRateHertz: in.SampleRate,
		LanguageCode:    in.Language,
	}
	if in.Channels > 1 {
		req.Config.AudioChannelCount = in.Channels
	}
	req.Audio.Content = base64.StdEncoding.EncodeToString(in.WAV)

	var out recognizeResp
	if err := g.h.postJSON(ctx, "google speech", withKey(g.url, g.apiKey), req, &out); err != nil {
		return "", err
	}

	var text strings.Builder
	for _, r := range out.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		text.WriteString(r.Alternatives[0].Transcript)
	}
	return strings.TrimSpace(text.String()), nil
}
