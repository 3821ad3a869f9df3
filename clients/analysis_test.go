package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGoogleLanguageAnalyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req annotateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Document.Content != "the clinic was great" || req.Document.Type != "PLAIN_TEXT" {
			t.Errorf("document = %+v", req.Document)
		}
		if !req.Features.ExtractEntities || !req.Features.ExtractDocumentSentiment || !req.Features.ExtractEntitySentiment {
			t.Errorf("features = %+v", req.Features)
		}
		io.WriteString(w, `{
			"language": "en",
			"documentSentiment": {"magnitude": 0.8, "score": 0.8},
			"sentences": [{"text": {"content": "the clinic was great", "beginOffset": 0}, "sentiment": {"magnitude": 0.8, "score": 0.8}}],
			"entities": [{"name": "clinic", "type": "LOCATION", "salience": 1, "sentiment": {"magnitude": 0.7, "score": 0.7}}]
		}`)
	}))
	defer srv.Close()

	g, err := NewGoogleLanguage(context.Background(), NewHTTPWithClient(srv.Client()), srv.URL, Credentials{GoogleAPIKey: "k"})
	if err != nil {
		t.Fatalf("NewGoogleLanguage: %v", err)
	}
	a, err := g.Analyze(context.Background(), "the clinic was great")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.DocumentSentiment == nil || a.DocumentSentiment.Score != 0.8 {
		t.Errorf("document sentiment = %+v", a.DocumentSentiment)
	}
	if len(a.Entities) != 1 || a.Entities[0].Name != "clinic" || a.Entities[0].Sentiment == nil {
		t.Errorf("entities = %+v", a.Entities)
	}
	if len(a.Sentences) != 1 || a.Language != "en" {
		t.Errorf("sentences = %+v language = %q", a.Sentences, a.Language)
	}
}

func TestEmotionAnalyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req EmoReq
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Text != "so happy" {
			t.Errorf("text = %q", req.Text)
		}
		io.WriteString(w, `{"emotions":[{"label":"joy","score":0.9},{"label":"neutral","score":0.1}],"dominant_emotion":"joy"}`)
	}))
	defer srv.Close()

	a, err := NewEmotionAnalyzer(NewHTTPWithClient(srv.Client()), srv.URL).Analyze(context.Background(), "so happy")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.DominantEmotion != "joy" || len(a.Emotions) != 2 {
		t.Errorf("analysis = %+v", a)
	}
}

func TestEmotionAnalyzeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewEmotionAnalyzer(NewHTTPWithClient(srv.Client()), srv.URL).Analyze(context.Background(), "x")
	if !IsRetryable(err) {
		t.Fatalf("err = %v, want retryable service error", err)
	}
}
