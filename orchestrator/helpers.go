package orchestrator

import (
	"github.com/maastricht-university/survey-audio/audio"
)

// extractAll copies every window out of track. Any failure means the
// windows do not fit the track, which aborts the request.
func extractAll(track *audio.Track, windows []audio.Window) ([]audio.Clip, error) {
	clips := make([]audio.Clip, 0, len(windows))
	for _, w := range windows {
		c, err := audio.Extract(track, w)
		if err != nil {
			return nil, err
		}
		clips = append(clips, c)
	}
	return clips, nil
}
