package clients

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// SpeechInput is one WAV buffer submitted for recognition.
type SpeechInput struct {
	Name       string // file name reported to upload-style APIs
	WAV        []byte
	SampleRate int
	Channels   int
	Language   string // BCP-47, e.g. en-US
}

// Credentials are handed to service clients at construction. Nothing in
// this package reads secrets from the environment on its own.
type Credentials struct {
	GoogleAPIKey         string
	GoogleServiceAccount []byte // service account JSON
	OpenAIKey            string
}

// LoadCredentialsFile reads a Google service account JSON into c.
func (c *Credentials) LoadCredentialsFile(path string) error {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read credentials %s: %w", path, err)
	}
	c.GoogleServiceAccount = b
	return nil
}

// googleHTTP returns an authorized client for Google REST APIs. With a
// service account the client carries OAuth tokens; otherwise the API key is
// appended to every URL by the caller.
func googleHTTP(ctx context.Context, base *HTTP, creds Credentials) (*HTTP, error) {
	if len(creds.GoogleServiceAccount) == 0 {
		if creds.GoogleAPIKey == "" {
			return nil, fmt.Errorf("google: api key or service account required")
		}
		return base, nil
	}
	gc, err := google.CredentialsFromJSON(ctx, creds.GoogleServiceAccount, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("google credentials: %w", err)
	}
	c := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, base.c), gc.TokenSource)
	c.Timeout = base.c.Timeout
	return NewHTTPWithClient(c), nil
}

func withKey(url, key string) string {
	if key == "" {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "key=" + key
}

// languageTag trims a BCP-47 locale to its ISO-639-1 language, as Whisper expects.
func languageTag(locale string) string {
	lang, _, _ := strings.Cut(locale, "-")
	return strings.ToLower(lang)
}
