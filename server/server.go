// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	cfg "github.com/maastricht-university/survey-audio/config"
	"github.com/maastricht-university/survey-audio/metrics"
	"github.com/maastricht-university/survey-audio/orchestrator"
)

// CodeInternal marks failures of the server itself rather than of a request.
const CodeInternal = "internal"

type Server struct {
	app  *fiber.App
	p    *orchestrator.Pipeline
	addr string
	log  logrus.FieldLogger
}

type textRequest struct {
	Text   string `json:"text" form:"text"`
	Method string `json:"method" form:"method"`
}

func New(c cfg.Server, p *orchestrator.Pipeline, m *metrics.Metrics, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	app := fiber.New(fiber.Config{
		AppName:               "survey-audio",
		BodyLimit:             c.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
			code := orchestrator.CodeInput
			if status >= fiber.StatusInternalServerError {
				code = CodeInternal
			}
			return ctx.Status(status).JSON(fiber.Map{"error": err.Error(), "code": code})
		},
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	s := &Server{app: app, p: p, addr: c.Addr, log: log}
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}
	api := app.Group("/api")
	api.Post("/audio", s.audio)
	api.Post("/text", s.text)
	return s
}

// Handler returns the fiber app, mostly for tests.
func (s *Server) Handler() *fiber.App { return s.app }

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.addr).Info("listening")
		errc <- s.app.Listen(s.addr)
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.log.Info("shutting down")
		return s.app.Shutdown()
	}
}

func (s *Server) audio(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return reply(c, s.p.AnalyzeAudio(c.UserContext(), nil, ""))
	}
	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	defer f.Close()

	s.log.WithFields(logrus.Fields{
		"request": c.GetRespHeader(fiber.HeaderXRequestID),
		"file":    filepath.Base(fh.Filename),
		"size":    fh.Size,
	}).Debug("audio upload")
	p := s.p.ForLanguage(c.FormValue("language"))
	return reply(c, p.AnalyzeAudio(c.UserContext(), f, fh.Filename))
}

func (s *Server) text(c *fiber.Ctx) error {
	var req textRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return reply(c, s.p.AnalyzeText(c.UserContext(), req.Text, req.Method))
}

func reply(c *fiber.Ctx, env orchestrator.Envelope) error {
	return c.Status(statusFor(env)).JSON(env)
}

func statusFor(env orchestrator.Envelope) int {
	if !env.Failed() {
		return fiber.StatusOK
	}
	switch env.Code {
	case orchestrator.CodeInput, orchestrator.CodeDecode:
		return fiber.StatusBadRequest
	case orchestrator.CodeTranscription, orchestrator.CodeAnalysis:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
