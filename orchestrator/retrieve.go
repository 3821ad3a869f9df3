package orchestrator

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// AssetSource lists and downloads survey attachments.
type AssetSource interface {
	ListAudioAssets(ctx context.Context, assetID, token string) ([]string, error)
	Fetch(ctx context.Context, rawURL, token, dir string) (path string, fetched bool, err error)
}

type AssetStatus string

const (
	AssetAnalyzed AssetStatus = "analyzed"
	AssetSkipped  AssetStatus = "skipped"
	AssetFailed   AssetStatus = "failed"
)

type AssetResult struct {
	URL      string      `json:"url"`
	Path     string      `json:"path,omitempty"`
	Status   AssetStatus `json:"status"`
	Envelope *Envelope   `json:"result,omitempty"`
}

// Retrieve downloads every audio attachment of assetID into dir and
// analyzes the ones that were not already on disk, one at a time.
func (p *Pipeline) Retrieve(ctx context.Context, src AssetSource, assetID, token, dir string) ([]AssetResult, error) {
	urls, err := src.ListAudioAssets(ctx, assetID, token)
	if err != nil {
		return nil, fmt.Errorf("list assets %s: %w", assetID, err)
	}
	p.log.WithFields(logrus.Fields{"asset": assetID, "attachments": len(urls)}).Info("listed audio attachments")

	out := make([]AssetResult, 0, len(urls))
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		log := p.log.WithField("url", u)
		path, fetched, err := src.Fetch(ctx, u, token, dir)
		switch {
		case err != nil:
			log.WithError(err).Warn("download failed")
			env := errorEnvelope(CodeInput, "download: %v", err)
			out = append(out, AssetResult{URL: u, Status: AssetFailed, Envelope: &env})
			continue
		case !fetched:
			log.Info("already downloaded, skipping")
			out = append(out, AssetResult{URL: u, Path: path, Status: AssetSkipped})
			continue
		}

		log.WithField("path", path).Info("download completed, transcribing")
		env := p.AnalyzeFile(ctx, path)
		status := AssetAnalyzed
		if env.Failed() {
			status = AssetFailed
		}
		out = append(out, AssetResult{URL: u, Path: path, Status: status, Envelope: &env})
	}
	return out, nil
}
