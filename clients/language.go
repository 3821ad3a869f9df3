package clients

import (
	"context"
)

const DefaultGoogleLanguageURL = "https://language.googleapis.com/v1/documents:annotateText"

type Sentiment struct {
	Magnitude float64 `json:"magnitude"`
	Score     float64 `json:"score"`
}

type TextSpan struct {
	Content     string `json:"content"`
	BeginOffset int    `json:"beginOffset"`
}

type Sentence struct {
	Text      TextSpan   `json:"text"`
	Sentiment *Sentiment `json:"sentiment,omitempty"`
}

type Entity struct {
	Name      string            `json:"name"`
	Type      string            `json:"type"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Salience  float64           `json:"salience"`
	Sentiment *Sentiment        `json:"sentiment,omitempty"`
}

// Analysis is the annotation attached to a transcript. Google annotateText
// fills the sentiment and entity fields, the emotion service fills Emotions.
type Analysis struct {
	Language          string     `json:"language,omitempty"`
	DocumentSentiment *Sentiment `json:"documentSentiment,omitempty"`
	Sentences         []Sentence `json:"sentences,omitempty"`
	Entities          []Entity   `json:"entities,omitempty"`
	Emotions          []EmoScore `json:"emotions,omitempty"`
	DominantEmotion   string     `json:"dominantEmotion,omitempty"`
}

type document struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type annotateReq struct {
	Document document `json:"document"`
	Features struct {
		ExtractEntities          bool `json:"extractEntities"`
		ExtractDocumentSentiment bool `json:"extractDocumentSentiment"`
		ExtractEntitySentiment   bool `json:"extractEntitySentiment"`
	} `json:"features"`
	EncodingType string `json:"encodingType"`
}

// GoogleLanguage calls the Natural Language annotateText method with
// entity, document sentiment and entity sentiment features enabled.
type GoogleLanguage struct {
	h      *HTTP
	url    string
	apiKey string
}

func NewGoogleLanguage(ctx context.Context, h *HTTP, url string, creds Credentials) (*GoogleLanguage, error) {
	if url == "" {
		url = DefaultGoogleLanguageURL
	}
	authed, err := googleHTTP(ctx, h, creds)
	if err != nil {
		return nil, err
	}
	g := &GoogleLanguage{h: authed, url: url}
	if len(creds.GoogleServiceAccount) == 0 {
		g.apiKey = creds.GoogleAPIKey
	}
	return g, nil
}

func (g *GoogleLanguage) Analyze(ctx context.Context, text string) (*Analysis, error) {
	req := annotateReq{
		Document:     document{Type: "PLAIN_TEXT", Content: text},
		EncodingType: "UTF8",
	}
	req.Features.ExtractEntities = true
	req.Features.ExtractDocumentSentiment = true
	req.Features.ExtractEntitySentiment = true

	var out Analysis
	if err := g.h.postJSON(ctx, "google language", withKey(g.url, g.apiKey), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
