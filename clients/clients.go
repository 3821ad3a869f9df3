package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type HTTP struct{ c *http.Client }

func NewHTTP() *HTTP { return &HTTP{c: &http.Client{Timeout: 60 * time.Second}} }

// NewHTTPWithClient wraps an existing client, e.g. an oauth2 client or a test server client.
func NewHTTPWithClient(c *http.Client) *HTTP {
	if c == nil {
		return NewHTTP()
	}
	return &HTTP{c: c}
}

// postJSON sends body as JSON and decodes a 2xx response into out.
func (h *HTTP) postJSON(ctx context.Context, service, url string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s encode: %w", service, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return h.do(service, req, out)
}

func (h *HTTP) do(service string, req *http.Request, out any) error {
	resp, err := h.c.Do(req)
	if err != nil {
		return &ServiceError{Service: service, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &ServiceError{Service: service, StatusCode: resp.StatusCode, Body: string(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s decode: %w", service, err)
	}
	return nil
}
