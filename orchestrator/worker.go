package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/survey-audio/audio"
	"github.com/maastricht-university/survey-audio/clients"
	"github.com/maastricht-university/survey-audio/metrics"
)

// SpeechService recognizes the speech in one WAV buffer.
type SpeechService interface {
	Recognize(ctx context.Context, in clients.SpeechInput) (string, error)
}

// Worker turns one clip into one ChunkResult. Service failures never
// escape as errors; they are recorded on the result.
type Worker struct {
	Speech   SpeechService
	Language string
	Name     string // base name for uploads and staged files
	Retries  int
	Backoff  time.Duration

	Log     logrus.FieldLogger
	Metrics *metrics.Metrics
	stage   *stager
}

func (w *Worker) Transcribe(ctx context.Context, clip audio.Clip) (res ChunkResult) {
	start := time.Now()
	w.Metrics.ChunkStarted()
	defer func() {
		if r := recover(); r != nil {
			res = failed(clip.Index, fmt.Errorf("transcribe chunk %d: panic: %v", clip.Index, r))
		}
		w.Metrics.ChunkFinished(string(res.Status), time.Since(start))
	}()

	log := w.logger().WithFields(logrus.Fields{"chunk": clip.Index, "start": clip.Start, "end": clip.End})

	wav, err := clip.WAV()
	if err != nil {
		return failed(clip.Index, fmt.Errorf("encode chunk %d: %w", clip.Index, err))
	}
	name := fmt.Sprintf("%s_%d.wav", w.Name, clip.Index)
	if w.stage != nil {
		path, cleanup, err := w.stage.stage(w.Name, clip.Index, wav)
		if err != nil {
			return failed(clip.Index, fmt.Errorf("stage chunk %d: %w", clip.Index, err))
		}
		defer cleanup()
		log = log.WithField("staged", path)
	}

	in := clients.SpeechInput{
		Name:       name,
		WAV:        wav,
		SampleRate: clip.SampleRate,
		Channels:   clip.Channels,
		Language:   w.Language,
	}
	text, err := w.recognize(ctx, in, log)
	if err != nil {
		log.WithError(err).Warn("chunk transcription failed")
		return failed(clip.Index, err)
	}
	log.WithField("took", time.Since(start)).Debug("chunk transcribed")
	return succeeded(clip.Index, text)
}

// recognize retries quota and server errors with doubling backoff.
func (w *Worker) recognize(ctx context.Context, in clients.SpeechInput, log logrus.FieldLogger) (string, error) {
	for attempt := 0; ; attempt++ {
		text, err := w.Speech.Recognize(ctx, in)
		if err == nil {
			return text, nil
		}
		if attempt >= w.Retries || !clients.IsRetryable(err) || ctx.Err() != nil {
			return "", err
		}
		wait := w.Backoff << attempt
		w.Metrics.Retried()
		log.WithError(err).WithFields(logrus.Fields{"attempt": attempt + 1, "wait": wait}).Info("retrying speech call")
		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return "", fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		}
	}
}

func (w *Worker) logger() logrus.FieldLogger {
	if w.Log == nil {
		return logrus.StandardLogger()
	}
	return w.Log
}
