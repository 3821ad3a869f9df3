package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  log_level: debug
audio:
  chunk_duration: 30s
transcription:
  backend: whisper
  concurrency: 5
  short_threshold: 90s
services:
  whisper:
    url: http://whisper.local/v1
`)
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pipeline.LogLvl != "debug" {
		t.Errorf("log level = %q", cfg.Pipeline.LogLvl)
	}
	if cfg.Audio.ChunkDuration != 30*time.Second {
		t.Errorf("chunk duration = %s", cfg.Audio.ChunkDuration)
	}
	if cfg.Transcription.Backend != BackendWhisper || cfg.Transcription.Concurrency != 5 {
		t.Errorf("transcription = %+v", cfg.Transcription)
	}
	if cfg.Transcription.ShortThreshold != 90*time.Second {
		t.Errorf("threshold = %s", cfg.Transcription.ShortThreshold)
	}
	// untouched keys keep defaults
	if cfg.Transcription.Language != DefaultLanguage || cfg.Audio.Separator != DefaultSeparator {
		t.Errorf("defaults lost: language %q separator %q", cfg.Transcription.Language, cfg.Audio.Separator)
	}
	if cfg.Services.Whisper.Model != "whisper-1" || cfg.Services.Whisper.URL != "http://whisper.local/v1" {
		t.Errorf("whisper service = %+v", cfg.Services.Whisper)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadGuessesByConfigEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config", "prod"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "prod", "config.yaml"), []byte("transcription:\n  concurrency: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)
	t.Setenv("CONFIG_ENV", "prod")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transcription.Concurrency != 7 {
		t.Errorf("concurrency = %d, want 7", cfg.Transcription.Concurrency)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transcription.Concurrency != DefaultConcurrency || cfg.Audio.ChunkDuration != DefaultChunkDuration {
		t.Errorf("unexpected defaults %+v", cfg.Transcription)
	}
}

func TestEnvAndFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "transcription:\n  concurrency: 5\n  language: fr-FR\n")
	t.Setenv("SURVEYAUDIO_TRANSCRIPTION_CONCURRENCY", "12")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/secrets/sa.json")
	t.Setenv("SURVEYAUDIO_AUDIO_CHUNK_DURATION", "20s")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("language", "", "")
	flags.Int("concurrency", 0, "")
	flags.String("backend", "", "")
	if err := flags.Parse([]string{"--language", "de-DE"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transcription.Language != "de-DE" {
		t.Errorf("language = %q, flag should win", cfg.Transcription.Language)
	}
	if cfg.Transcription.Concurrency != 12 {
		t.Errorf("concurrency = %d, env should win over file", cfg.Transcription.Concurrency)
	}
	if cfg.Transcription.Backend != BackendGoogle {
		t.Errorf("unchanged flag overrode backend: %q", cfg.Transcription.Backend)
	}
	if cfg.Credentials.GoogleCredentialsFile != "/secrets/sa.json" {
		t.Errorf("credentials file = %q", cfg.Credentials.GoogleCredentialsFile)
	}
	if cfg.Audio.ChunkDuration != 20*time.Second {
		t.Errorf("chunk duration = %s", cfg.Audio.ChunkDuration)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Root)
		want   string
	}{
		{"zero chunk", func(r *Root) { r.Audio.ChunkDuration = 0 }, "chunk_duration"},
		{"zero concurrency", func(r *Root) { r.Transcription.Concurrency = 0 }, "concurrency"},
		{"negative threshold", func(r *Root) { r.Transcription.ShortThreshold = -time.Second }, "short_threshold"},
		{"unknown backend", func(r *Root) { r.Transcription.Backend = "sphinx" }, "backend"},
		{"unknown method", func(r *Root) { r.Analysis.Method = "vader" }, "analysis.method"},
		{"empty language", func(r *Root) { r.Transcription.Language = " " }, "language"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Validate() = %v, want mention of %q", err, tc.want)
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Transcription.Concurrency = 3
	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(buf.String(), "chunk_duration: 45s") {
		t.Errorf("durations should encode as strings:\n%s", buf.String())
	}
	path := writeConfig(t, buf.String())
	got, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Transcription.Concurrency != 3 {
		t.Errorf("concurrency = %d", got.Transcription.Concurrency)
	}
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restore working directory: %v", err)
		}
	})
}
