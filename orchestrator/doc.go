// Package orchestrator runs the transcription pipeline: it picks a route for
// a decoded track, fans chunk transcriptions out over a bounded worker pool,
// reassembles them by index and wraps the result with sentiment analysis in
// an envelope.
package orchestrator
