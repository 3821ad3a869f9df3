package clients

import (
	"context"
	"strings"
)

// --- Emotion (/detect) ---
type EmoReq struct {
	Text string `json:"text"`
}
type EmoScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
type EmoResp struct {
	Emotions        []EmoScore `json:"emotions"`
	DominantEmotion string     `json:"dominant_emotion"`
}

// EmotionAnalyzer scores a transcript against the emotion detection service.
type EmotionAnalyzer struct {
	h   *HTTP
	url string
}

func NewEmotionAnalyzer(h *HTTP, url string) *EmotionAnalyzer {
	return &EmotionAnalyzer{h: h, url: strings.TrimRight(url, "/")}
}

func (e *EmotionAnalyzer) Analyze(ctx context.Context, text string) (*Analysis, error) {
	var out EmoResp
	if err := e.h.postJSON(ctx, "emotion", e.url+"/detect", EmoReq{Text: text}, &out); err != nil {
		return nil, err
	}
	return &Analysis{Emotions: out.Emotions, DominantEmotion: out.DominantEmotion}, nil
}
