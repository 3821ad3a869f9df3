package config

import "time"

const (
	BackendGoogle  = "google"
	BackendWhisper = "whisper"
	BackendASR     = "asr"

	MethodGoogle  = "google"
	MethodEmotion = "emotion"
)

const (
	DefaultChunkDuration  = 45 * time.Second
	DefaultShortThreshold = 60 * time.Second
	DefaultConcurrency    = 20
	DefaultTimeout        = 10 * time.Minute
	DefaultMaxRetries     = 2
	DefaultRetryBackoff   = time.Second
	DefaultLanguage       = "en-US"
	DefaultSeparator      = " "
)

// Default returns the configuration used when no file sets a value.
func Default() *Root {
	r := &Root{}
	r.Pipeline.Name = "survey-audio"
	r.Pipeline.Version = "0.1.0"
	r.Pipeline.LogLvl = "info"
	r.Audio = Audio{
		ChunkDuration: DefaultChunkDuration,
		Separator:     DefaultSeparator,
	}
	r.Transcription = Transcription{
		Backend:        BackendGoogle,
		Language:       DefaultLanguage,
		ShortThreshold: DefaultShortThreshold,
		Concurrency:    DefaultConcurrency,
		Timeout:        DefaultTimeout,
		MaxRetries:     DefaultMaxRetries,
		RetryBackoff:   DefaultRetryBackoff,
	}
	r.Analysis.Method = MethodGoogle
	r.Services.Whisper.Model = "whisper-1"
	r.Kobo = Kobo{
		BaseURL:     "https://kf.kobotoolbox.org",
		DownloadDir: "tmp",
	}
	r.Server = Server{
		Addr:      ":8080",
		BodyLimit: 64 << 20,
	}
	return r
}
