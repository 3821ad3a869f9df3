package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/survey-audio/audio"
	"github.com/maastricht-university/survey-audio/clients"
	cfg "github.com/maastricht-university/survey-audio/config"
	"github.com/maastricht-university/survey-audio/orchestrator"
	"github.com/maastricht-university/survey-audio/server"
)

func addTranscriptionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("backend", "", "speech backend (google, whisper, asr)")
	f.String("language", "", "BCP-47 language code, e.g. en-US")
	f.Duration("chunk-duration", 0, "chunk length for long recordings")
	f.Duration("short-threshold", 0, "recordings shorter than this are sent whole")
	f.Int("concurrency", 0, "maximum concurrent speech calls")
	f.Duration("timeout", 0, "overall deadline for the chunked path")
	f.String("stage-dir", "", "write chunk WAVs here while they are transcribed")
	f.String("separator", "", "text placed between chunk transcripts")
	f.String("method", "", "sentiment method (google, emotion)")
}

func newAnalyzeCommand(app *commandContext) *cobra.Command {
	var exportDir string
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Transcribe one recording and analyze its sentiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if exportDir != "" {
				if err := exportChunks(args[0], exportDir, app.conf.Audio.ChunkDuration); err != nil {
					return err
				}
			}
			p, err := app.pipeline(cmd.Context())
			if err != nil {
				return err
			}
			env := p.AnalyzeFile(cmd.Context(), args[0])
			if err := orchestrator.WriteJSON(cmd.OutOrStdout(), env); err != nil {
				return err
			}
			if env.Failed() {
				return fmt.Errorf("analyze %s failed (%s)", args[0], env.Code)
			}
			return nil
		},
	}
	addTranscriptionFlags(cmd)
	cmd.Flags().StringVar(&exportDir, "export-chunks", "", "also write every chunk as a WAV file into this directory")
	return cmd
}

// exportChunks writes the windows of path as <base>_<index>.wav files.
func exportChunks(path, dir string, chunk time.Duration) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	track, err := audio.Decode(f, audio.FormatFromPath(path))
	if err != nil {
		return err
	}
	windows, err := audio.Segment(track.Duration(), chunk)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, w := range windows {
		clip, err := audio.Extract(track, w)
		if err != nil {
			return err
		}
		if err := clip.WriteWAV(filepath.Join(dir, fmt.Sprintf("%s_%d.wav", base, w.Index))); err != nil {
			return err
		}
	}
	return nil
}

func newTextCommand(app *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "text <text>",
		Short: "Analyze the sentiment of a piece of text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.pipeline(cmd.Context())
			if err != nil {
				return err
			}
			env := p.AnalyzeText(cmd.Context(), strings.Join(args, " "), app.conf.Analysis.Method)
			if err := orchestrator.WriteJSON(cmd.OutOrStdout(), env); err != nil {
				return err
			}
			if env.Failed() {
				return fmt.Errorf("text analysis failed (%s)", env.Code)
			}
			return nil
		},
	}
	cmd.Flags().String("method", "", "sentiment method (google, emotion)")
	return cmd
}

func newRetrieveCommand(app *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "retrieve <assetID> [token]",
		Short: "Download a KoboToolbox asset's audio answers and analyze new ones",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := app.conf.Kobo.Token
			if len(args) == 2 {
				token = args[1]
			}
			if token == "" {
				return fmt.Errorf("a KoboToolbox API token is required (argument or KOBO_TOKEN)")
			}
			p, err := app.pipeline(cmd.Context())
			if err != nil {
				return err
			}
			kobo := clients.NewKobo(clients.NewHTTP(), app.conf.Kobo.BaseURL)
			results, err := p.Retrieve(cmd.Context(), kobo, args[0], token, app.conf.Kobo.DownloadDir)
			if err != nil {
				return err
			}
			if err := saveResults(results); err != nil {
				return err
			}
			if asJSON {
				return orchestrator.WriteJSON(cmd.OutOrStdout(), results)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderResults(results))
			return nil
		},
	}
	addTranscriptionFlags(cmd)
	cmd.Flags().String("dir", "", "download directory")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

// saveResults writes each analyzed envelope next to its audio file.
func saveResults(results []orchestrator.AssetResult) error {
	for _, r := range results {
		if r.Path == "" || r.Envelope == nil {
			continue
		}
		f, err := os.Create(r.Path + ".json")
		if err != nil {
			return err
		}
		err = orchestrator.WriteJSON(f, r.Envelope)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func newServeCommand(app *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.pipeline(cmd.Context())
			if err != nil {
				return err
			}
			srv := server.New(app.conf.Server, p, app.metrics, app.log)
			return srv.Run(cmd.Context())
		},
	}
	addTranscriptionFlags(cmd)
	cmd.Flags().String("addr", "", "listen address")
	return cmd
}

func newConfigCommand(app *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return redacted(app.conf).Encode(cmd.OutOrStdout())
		},
	}
}

func redacted(c *cfg.Root) *cfg.Root {
	out := *c
	for _, s := range []*string{&out.Credentials.GoogleAPIKey, &out.Credentials.OpenAIAPIKey, &out.Kobo.Token} {
		if *s != "" {
			*s = "********"
		}
	}
	return &out
}
