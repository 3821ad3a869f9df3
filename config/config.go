package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "SURVEYAUDIO"

type Service struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model,omitempty"`
}
type Services struct {
	Speech   Service `yaml:"speech"`
	Whisper  Service `yaml:"whisper"`
	ASR      Service `yaml:"asr"`
	Language Service `yaml:"language"`
	Emotion  Service `yaml:"emotion"`
}
type Audio struct {
	ChunkDuration time.Duration `yaml:"chunk_duration"`
	Separator     string        `yaml:"separator"`
}
type Transcription struct {
	Backend        string        `yaml:"backend"` // google | whisper | asr
	Language       string        `yaml:"language"`
	ShortThreshold time.Duration `yaml:"short_threshold"`
	Concurrency    int           `yaml:"concurrency"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryBackoff   time.Duration `yaml:"retry_backoff"`
	StageDir       string        `yaml:"stage_dir,omitempty"`
}
type Analysis struct {
	Method string `yaml:"method"` // google | emotion
}
type Credentials struct {
	GoogleAPIKey          string `yaml:"google_api_key,omitempty"`
	GoogleCredentialsFile string `yaml:"google_credentials_file,omitempty"`
	OpenAIAPIKey          string `yaml:"openai_api_key,omitempty"`
}
type Kobo struct {
	BaseURL     string `yaml:"base_url"`
	Token       string `yaml:"token,omitempty"`
	DownloadDir string `yaml:"download_dir"`
}
type Server struct {
	Addr      string `yaml:"addr"`
	BodyLimit int    `yaml:"body_limit"`
}
type Root struct {
	Pipeline struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
		LogLvl  string `yaml:"log_level"`
		LogFmt  string `yaml:"log_format,omitempty"` // text | json, auto when empty
	} `yaml:"pipeline"`
	Audio         Audio         `yaml:"audio"`
	Transcription Transcription `yaml:"transcription"`
	Analysis      Analysis      `yaml:"analysis"`
	Services      Services      `yaml:"services"`
	Credentials   Credentials   `yaml:"credentials"`
	Kobo          Kobo          `yaml:"kobo"`
	Server        Server        `yaml:"server"`
}

// Load decodes the yaml config at path, or the first file found by
// CONFIG_ENV guessing when path is empty, on top of Default(). Environment
// variables (SURVEYAUDIO_<SECTION>_<KEY>) and changed flags override the file.
func Load(path string, flags *pflag.FlagSet) (*Root, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	} else {
		for _, p := range guess() {
			err := decodeFile(p, cfg)
			if err == nil {
				break
			}
			if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := applyOverrides(cfg, flags); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func guess() []string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yaml",
	}
}

func decodeFile(path string, cfg *Root) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

// Encode writes cfg as yaml.
func (r *Root) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

func (r *Root) Validate() error {
	var errs []error
	if r.Audio.ChunkDuration <= 0 {
		errs = append(errs, fmt.Errorf("audio.chunk_duration must be positive"))
	}
	if r.Transcription.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("transcription.concurrency must be positive"))
	}
	if r.Transcription.ShortThreshold < 0 {
		errs = append(errs, fmt.Errorf("transcription.short_threshold must not be negative"))
	}
	if r.Transcription.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("transcription.max_retries must not be negative"))
	}
	if strings.TrimSpace(r.Transcription.Language) == "" {
		errs = append(errs, fmt.Errorf("transcription.language is required"))
	}
	switch r.Transcription.Backend {
	case BackendGoogle, BackendWhisper, BackendASR:
	default:
		errs = append(errs, fmt.Errorf("transcription.backend %q is not one of google, whisper, asr", r.Transcription.Backend))
	}
	switch r.Analysis.Method {
	case MethodGoogle, MethodEmotion:
	default:
		errs = append(errs, fmt.Errorf("analysis.method %q is not one of google, emotion", r.Analysis.Method))
	}
	return errors.Join(errs...)
}

// override binds one dotted key to an env var and optional flag.
type override struct {
	key   string
	flag  string
	env   []string // extra env names besides the prefixed one
	apply func(v *viper.Viper, key string, cfg *Root)
}

func str(dst func(*Root) *string) func(*viper.Viper, string, *Root) {
	return func(v *viper.Viper, key string, cfg *Root) { *dst(cfg) = v.GetString(key) }
}

func integer(dst func(*Root) *int) func(*viper.Viper, string, *Root) {
	return func(v *viper.Viper, key string, cfg *Root) { *dst(cfg) = v.GetInt(key) }
}

func duration(dst func(*Root) *time.Duration) func(*viper.Viper, string, *Root) {
	return func(v *viper.Viper, key string, cfg *Root) { *dst(cfg) = v.GetDuration(key) }
}

var overrides = []override{
	{key: "pipeline.log_level", flag: "log-level", apply: str(func(r *Root) *string { return &r.Pipeline.LogLvl })},
	{key: "pipeline.log_format", flag: "log-format", apply: str(func(r *Root) *string { return &r.Pipeline.LogFmt })},
	{key: "audio.chunk_duration", flag: "chunk-duration", apply: duration(func(r *Root) *time.Duration { return &r.Audio.ChunkDuration })},
	{key: "audio.separator", flag: "separator", apply: str(func(r *Root) *string { return &r.Audio.Separator })},
	{key: "transcription.backend", flag: "backend", apply: str(func(r *Root) *string { return &r.Transcription.Backend })},
	{key: "transcription.language", flag: "language", apply: str(func(r *Root) *string { return &r.Transcription.Language })},
	{key: "transcription.short_threshold", flag: "short-threshold", apply: duration(func(r *Root) *time.Duration { return &r.Transcription.ShortThreshold })},
	{key: "transcription.concurrency", flag: "concurrency", apply: integer(func(r *Root) *int { return &r.Transcription.Concurrency })},
	{key: "transcription.timeout", flag: "timeout", apply: duration(func(r *Root) *time.Duration { return &r.Transcription.Timeout })},
	{key: "transcription.max_retries", apply: integer(func(r *Root) *int { return &r.Transcription.MaxRetries })},
	{key: "transcription.retry_backoff", apply: duration(func(r *Root) *time.Duration { return &r.Transcription.RetryBackoff })},
	{key: "transcription.stage_dir", flag: "stage-dir", apply: str(func(r *Root) *string { return &r.Transcription.StageDir })},
	{key: "analysis.method", flag: "method", apply: str(func(r *Root) *string { return &r.Analysis.Method })},
	{key: "services.speech.url", apply: str(func(r *Root) *string { return &r.Services.Speech.URL })},
	{key: "services.whisper.url", apply: str(func(r *Root) *string { return &r.Services.Whisper.URL })},
	{key: "services.whisper.model", apply: str(func(r *Root) *string { return &r.Services.Whisper.Model })},
	{key: "services.asr.url", apply: str(func(r *Root) *string { return &r.Services.ASR.URL })},
	{key: "services.language.url", apply: str(func(r *Root) *string { return &r.Services.Language.URL })},
	{key: "services.emotion.url", apply: str(func(r *Root) *string { return &r.Services.Emotion.URL })},
	{key: "credentials.google_api_key", env: []string{"GOOGLE_API_KEY"}, apply: str(func(r *Root) *string { return &r.Credentials.GoogleAPIKey })},
	{key: "credentials.google_credentials_file", env: []string{"GOOGLE_APPLICATION_CREDENTIALS"}, apply: str(func(r *Root) *string { return &r.Credentials.GoogleCredentialsFile })},
	{key: "credentials.openai_api_key", env: []string{"OPENAI_API_KEY"}, apply: str(func(r *Root) *string { return &r.Credentials.OpenAIAPIKey })},
	{key: "kobo.base_url", apply: str(func(r *Root) *string { return &r.Kobo.BaseURL })},
	{key: "kobo.token", env: []string{"KOBO_TOKEN"}, apply: str(func(r *Root) *string { return &r.Kobo.Token })},
	{key: "kobo.download_dir", flag: "dir", apply: str(func(r *Root) *string { return &r.Kobo.DownloadDir })},
	{key: "server.addr", flag: "addr", apply: str(func(r *Root) *string { return &r.Server.Addr })},
	{key: "server.body_limit", apply: integer(func(r *Root) *int { return &r.Server.BodyLimit })},
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func applyOverrides(cfg *Root, flags *pflag.FlagSet) error {
	v := viper.New()
	for _, o := range overrides {
		names := append([]string{o.key, envName(o.key)}, o.env...)
		if err := v.BindEnv(names...); err != nil {
			return fmt.Errorf("bind env %s: %w", o.key, err)
		}
		if flags != nil && o.flag != "" {
			if f := flags.Lookup(o.flag); f != nil {
				if err := v.BindPFlag(o.key, f); err != nil {
					return fmt.Errorf("bind flag %s: %w", o.flag, err)
				}
			}
		}
	}
	for _, o := range overrides {
		if v.IsSet(o.key) {
			o.apply(v, o.key, cfg)
		}
	}
	return nil
}
