package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/survey-audio/audio"
	"github.com/maastricht-university/survey-audio/clients"
	cfg "github.com/maastricht-university/survey-audio/config"
	"github.com/maastricht-university/survey-audio/metrics"
)

// SentimentService annotates transcript text.
type SentimentService interface {
	Analyze(ctx context.Context, text string) (*clients.Analysis, error)
}

type Pipeline struct {
	cfg       *cfg.Root
	speech    SpeechService
	sentiment map[string]SentimentService
	log       logrus.FieldLogger
	metrics   *metrics.Metrics
	stage     *stager
}

type Option func(*Pipeline)

func WithLogger(l logrus.FieldLogger) Option { return func(p *Pipeline) { p.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(p *Pipeline) { p.metrics = m } }

// WithSentiment registers svc under an analysis method name.
func WithSentiment(method string, svc SentimentService) Option {
	return func(p *Pipeline) { p.sentiment[method] = svc }
}

func NewPipeline(c *cfg.Root, speech SpeechService, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg:       c,
		speech:    speech,
		sentiment: map[string]SentimentService{},
		log:       logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(p)
	}
	st, err := newStager(c.Transcription.StageDir)
	if err != nil {
		return nil, fmt.Errorf("stage dir: %w", err)
	}
	p.stage = st
	return p, nil
}

// ForLanguage returns a pipeline that transcribes in lang and shares its
// services and metrics with p.
func (p *Pipeline) ForLanguage(lang string) *Pipeline {
	if lang == "" || lang == p.cfg.Transcription.Language {
		return p
	}
	c := *p.cfg
	c.Transcription.Language = lang
	cp := *p
	cp.cfg = &c
	return &cp
}

func (p *Pipeline) worker(name string, log logrus.FieldLogger) *Worker {
	return &Worker{
		Speech:   p.speech,
		Language: p.cfg.Transcription.Language,
		Name:     name,
		Retries:  p.cfg.Transcription.MaxRetries,
		Backoff:  p.cfg.Transcription.RetryBackoff,
		Log:      log,
		Metrics:  p.metrics,
		stage:    p.stage,
	}
}

// Transcribe routes the track through the short or chunked path and returns
// the assembled transcript. A zero-length track yields an empty transcript
// without contacting the speech service.
func (p *Pipeline) Transcribe(ctx context.Context, track *audio.Track, name string) (Transcript, error) {
	total := track.Duration()
	if total == 0 {
		return Transcript{}, nil
	}

	tc := p.cfg.Transcription
	route := SelectRoute(total, tc.ShortThreshold)
	p.metrics.RouteSelected(string(route))
	log := p.log.WithFields(logrus.Fields{"name": name, "route": route, "duration": total})
	w := p.worker(name, log)

	var (
		t   Transcript
		err error
	)
	switch route {
	case RouteShort:
		res := w.Transcribe(ctx, audio.Whole(track))
		t, err = Assemble([]ChunkResult{res}, 1, p.cfg.Audio.Separator)
	default:
		t, err = p.transcribeChunked(ctx, w, track, log)
	}
	if err != nil {
		return Transcript{}, err
	}
	t.Route = route
	t.Length = total
	log.WithFields(logrus.Fields{"chunks": t.Chunks, "failed": len(t.Failed)}).Info("transcription finished")
	return t, nil
}

func (p *Pipeline) transcribeChunked(ctx context.Context, w *Worker, track *audio.Track, log logrus.FieldLogger) (Transcript, error) {
	windows, err := audio.Segment(track.Duration(), p.cfg.Audio.ChunkDuration)
	if err != nil {
		return Transcript{}, err
	}
	clips, err := extractAll(track, windows)
	if err != nil {
		return Transcript{}, err
	}

	if d := p.cfg.Transcription.Timeout; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	log.WithField("chunks", len(clips)).Debug("dispatching chunks")
	results := Dispatch(ctx, clips, p.cfg.Transcription.Concurrency, w.Transcribe)
	return Assemble(results, len(windows), p.cfg.Audio.Separator)
}

// AnalyzeAudio decodes, transcribes and analyzes one recording. The format
// is taken from the extension of name. It always returns an envelope.
func (p *Pipeline) AnalyzeAudio(ctx context.Context, r io.Reader, name string) Envelope {
	log := p.log.WithFields(logrus.Fields{"request": uuid.NewString(), "file": filepath.Base(name)})
	env := p.analyzeAudio(ctx, r, name, log)
	if env.Failed() {
		p.metrics.Request("audio", "error")
		log.WithField("code", env.Code).Warn(env.Error)
	} else {
		p.metrics.Request("audio", "ok")
	}
	return env
}

func (p *Pipeline) analyzeAudio(ctx context.Context, r io.Reader, name string, log logrus.FieldLogger) Envelope {
	if r == nil || name == "" {
		return errorEnvelope(CodeInput, "file was not provided or is not one of WAV, MP3, OGG, FLAC")
	}
	started := time.Now()
	track, err := audio.Decode(r, audio.FormatFromPath(name))
	if err != nil {
		return errorEnvelope(CodeDecode, "problem with the input file %s: %v", filepath.Base(name), err)
	}

	t, err := p.Transcribe(ctx, track, baseName(name))
	if err != nil {
		return errorEnvelope(codeFor(err), "transcription: %v", err)
	}
	if t.Chunks > 0 && len(t.Failed) == t.Chunks {
		return errorEnvelope(CodeTranscription, "transcription: %v", ErrNoSpeech)
	}

	var analysis *clients.Analysis
	if t.Text != "" {
		analysis, err = p.analyze(ctx, t.Text, p.cfg.Analysis.Method)
		if err != nil {
			return errorEnvelope(CodeAnalysis, "analysis: %v", err)
		}
	}
	log.WithField("took", time.Since(started)).Info("audio analyzed")
	return audioEnvelope(t, analysis)
}

// AnalyzeFile opens path and runs AnalyzeAudio on it.
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string) Envelope {
	f, err := os.Open(path)
	if err != nil {
		p.metrics.Request("audio", "error")
		return errorEnvelope(CodeInput, "open %s: %v", path, err)
	}
	defer f.Close()
	return p.AnalyzeAudio(ctx, f, path)
}

// AnalyzeText runs sentiment analysis on text with the named method.
func (p *Pipeline) AnalyzeText(ctx context.Context, text, method string) Envelope {
	if text == "" || method == "" {
		p.metrics.Request("text", "error")
		return errorEnvelope(CodeInput, "'text' and 'method' are required")
	}
	a, err := p.analyze(ctx, text, method)
	if err != nil {
		p.metrics.Request("text", "error")
		p.log.WithError(err).WithField("method", method).Warn("text analysis failed")
		if _, ok := p.sentiment[method]; !ok {
			return errorEnvelope(CodeInput, "%v", err)
		}
		return errorEnvelope(CodeAnalysis, "analysis: %v", err)
	}
	p.metrics.Request("text", "ok")
	return textEnvelope(a)
}

func (p *Pipeline) analyze(ctx context.Context, text, method string) (*clients.Analysis, error) {
	svc, ok := p.sentiment[method]
	if !ok {
		return nil, fmt.Errorf("the method %q is not supported", method)
	}
	return svc.Analyze(ctx, text)
}
