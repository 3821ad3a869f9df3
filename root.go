package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/survey-audio/clients"
	cfg "github.com/maastricht-university/survey-audio/config"
	"github.com/maastricht-university/survey-audio/metrics"
	"github.com/maastricht-university/survey-audio/orchestrator"
)

type commandContext struct {
	configFlag string
	envFile    string

	conf    *cfg.Root
	log     *logrus.Logger
	metrics *metrics.Metrics
}

func newRootCommand() *cobra.Command {
	app := &commandContext{log: logrus.New()}

	root := &cobra.Command{
		Use:           "survey-audio",
		Short:         "Transcribe and analyze survey voice answers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&app.configFlag, "config", "c", "", "configuration file path")
	pf.StringVar(&app.envFile, "env-file", ".env", "dotenv file loaded before the configuration")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (text, json)")

	root.AddCommand(
		newAnalyzeCommand(app),
		newTextCommand(app),
		newRetrieveCommand(app),
		newServeCommand(app),
		newConfigCommand(app),
	)
	return root
}

func (a *commandContext) setup(cmd *cobra.Command) error {
	if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", a.envFile, err)
	}
	conf, err := cfg.Load(strings.TrimSpace(a.configFlag), cmd.Flags())
	if err != nil {
		return err
	}
	a.conf = conf
	return a.setupLogger(cmd.ErrOrStderr())
}

func (a *commandContext) setupLogger(w io.Writer) error {
	lvl, err := logrus.ParseLevel(a.conf.Pipeline.LogLvl)
	if err != nil {
		return fmt.Errorf("pipeline.log_level: %w", err)
	}
	a.log.SetLevel(lvl)
	a.log.SetOutput(w)

	format := a.conf.Pipeline.LogFmt
	if format == "" {
		format = "json"
		if isTerminal(w) {
			format = "text"
		}
	}
	switch format {
	case "json":
		a.log.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		a.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("pipeline.log_format %q is not one of text, json", format)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// pipeline wires the configured speech backend and sentiment methods.
func (a *commandContext) pipeline(ctx context.Context) (*orchestrator.Pipeline, error) {
	creds, err := orchestrator.Credentials(a.conf)
	if err != nil {
		return nil, err
	}
	h := clients.NewHTTP()
	speech, err := orchestrator.NewSpeech(ctx, a.conf, h, creds)
	if err != nil {
		return nil, err
	}
	if a.metrics == nil {
		a.metrics = metrics.New()
	}
	opts := append([]orchestrator.Option{
		orchestrator.WithLogger(a.log.WithField("pipeline", a.conf.Pipeline.Name)),
		orchestrator.WithMetrics(a.metrics),
	}, orchestrator.SentimentOptions(ctx, a.conf, h, creds)...)
	return orchestrator.NewPipeline(a.conf, speech, opts...)
}
