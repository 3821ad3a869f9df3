package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const DefaultKoboURL = "https://kf.kobotoolbox.org"

// AudioExtensions are the attachment types picked up from submissions.
var AudioExtensions = []string{".mp3", ".wav", ".m4a", ".ogg", ".flac"}

type koboAttachment struct {
	DownloadURL string `json:"download_url"`
	Filename    string `json:"filename"`
	Mimetype    string `json:"mimetype"`
}

type koboSubmission struct {
	ID          int64            `json:"_id"`
	Attachments []koboAttachment `json:"_attachments"`
}

type koboDataResp struct {
	Count   int              `json:"count"`
	Next    string           `json:"next"`
	Results []koboSubmission `json:"results"`
}

// Kobo lists and downloads survey attachments from a KoboToolbox server.
type Kobo struct {
	h       *HTTP
	baseURL string
}

func NewKobo(h *HTTP, baseURL string) *Kobo {
	if baseURL == "" {
		baseURL = DefaultKoboURL
	}
	return &Kobo{h: h, baseURL: strings.TrimRight(baseURL, "/")}
}

// ListAudioAssets returns the audio attachment URLs of every submission of
// an asset, in submission order. Paginated responses are followed.
func (k *Kobo) ListAudioAssets(ctx context.Context, assetID, token string) ([]string, error) {
	if assetID == "" {
		return nil, fmt.Errorf("kobo: asset id required")
	}
	next := fmt.Sprintf("%s/api/v2/assets/%s/data.json", k.baseURL, url.PathEscape(assetID))

	var out []string
	for next != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, err
		}
		setToken(req, token)

		var page koboDataResp
		if err := k.h.do("kobo", req, &page); err != nil {
			return nil, err
		}
		for _, s := range page.Results {
			for _, a := range s.Attachments {
				if IsAudioURL(a.DownloadURL) {
					out = append(out, a.DownloadURL)
				}
			}
		}
		next = page.Next
	}
	return out, nil
}

// IsAudioURL matches the URL path against AudioExtensions, ignoring case and query.
func IsAudioURL(raw string) bool {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	for _, e := range AudioExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Fetch downloads rawURL into dir unless a file of that name already
// exists there. fetched is false when the download was skipped.
func (k *Kobo) Fetch(ctx context.Context, rawURL, token, dir string) (dst string, fetched bool, err error) {
	name, err := fileNameFromURL(rawURL)
	if err != nil {
		return "", false, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, err
	}
	dst = filepath.Join(dir, name)

	lock := flock.New(dst + ".lock")
	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return "", false, fmt.Errorf("lock %s: %w", dst, err)
	}
	if !locked {
		return "", false, fmt.Errorf("lock %s: not acquired", dst)
	}
	defer func() {
		if lock.Unlock() == nil {
			_ = os.Remove(lock.Path())
		}
	}()

	if _, err := os.Stat(dst); err == nil {
		return dst, false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", false, err
	}
	setToken(req, token)
	resp, err := k.h.c.Do(req)
	if err != nil {
		return "", false, &ServiceError{Service: "kobo download", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", false, &ServiceError{Service: "kobo download", StatusCode: resp.StatusCode, Body: string(body)}
	}

	tmp, err := os.CreateTemp(dir, name+".*.part")
	if err != nil {
		return "", false, err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", false, fmt.Errorf("download %s: %w", rawURL, err)
	}
	if err := tmp.Close(); err != nil {
		return "", false, err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", false, err
	}
	return dst, true, nil
}

func fileNameFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("url %q has no file name", raw)
	}
	return name, nil
}

func setToken(req *http.Request, token string) {
	if token == "" {
		return
	}
	if !strings.HasPrefix(token, "Token ") {
		token = "Token " + token
	}
	req.Header.Set("Authorization", token)
}
