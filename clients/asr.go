package clients

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"strings"
)

type TransSeg struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
type ASRResp struct {
	Segments []TransSeg `json:"segments"`
	Language string     `json:"language"`
}

// ASRSpeech posts WAV uploads to a self-hosted /transcribe service.
type ASRSpeech struct {
	h   *HTTP
	url string
}

func NewASRSpeech(h *HTTP, url string) *ASRSpeech {
	return &ASRSpeech{h: h, url: strings.TrimRight(url, "/")}
}

func (a *ASRSpeech) Recognize(ctx context.Context, in SpeechInput) (string, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	name := in.Name
	if name == "" {
		name = "audio.wav"
	}
	fw, err := w.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err = fw.Write(in.WAV); err != nil {
		return "", err
	}
	if in.Language != "" {
		if err = w.WriteField("language", in.Language); err != nil {
			return "", err
		}
	}
	if err = w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url+"/transcribe", &b)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out ASRResp
	if err := a.h.do("asr", req, &out); err != nil {
		return "", err
	}
	parts := make([]string, 0, len(out.Segments))
	for _, s := range out.Segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " "), nil
}
