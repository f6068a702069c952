// Package api exposes holder analysis over a JSON HTTP boundary.
package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"solana-holder-sampler/internal/analyzer"
	"solana-holder-sampler/internal/domain"
	"solana-holder-sampler/internal/errs"
)

// Server is the analysis HTTP server.
type Server struct {
	app      *fiber.App
	analyzer *analyzer.Analyzer
	logger   *zap.Logger
	port     string
}

// New creates the HTTP server and registers its routes.
func New(an *analyzer.Analyzer, logger *zap.Logger, port string) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "holder-sampler",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
	})

	s := &Server{
		app:      app,
		analyzer: an,
		logger:   logger,
		port:     port,
	}

	app.Get("/health", health)

	v1 := app.Group("/v1")
	v1.Post("/analyze", s.handleAnalyze)
	v1.Post("/analyze/addresses", s.handleAnalyzeAddresses)

	return s
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting API server", zap.String("port", s.port))
	return s.app.Listen(":" + s.port)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(10 * time.Second)
}

// health handles GET /health.
func health(c *fiber.Ctx) error {
	return c.SendString("OK")
}

// analyzeResponse is the success envelope: the analysis results plus the
// elapsed processing time as a string.
type analyzeResponse struct {
	domain.AnalysisResults
	ProcessingTimeSeconds string `json:"processingTimeSeconds"`
}

// errorResponse is the failure envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// handleAnalyze handles POST /v1/analyze.
func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	var params domain.AnalysisParams
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	results, elapsed, err := s.analyzer.Analyze(c.UserContext(), params)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(analyzeResponse{
		AnalysisResults:       *results,
		ProcessingTimeSeconds: fmt.Sprintf("%.2f", elapsed.Seconds()),
	})
}

// handleAnalyzeAddresses handles POST /v1/analyze/addresses. It runs the
// same analysis but renders only the selected addresses as
// newline-delimited plain text, ready to save as a file.
func (s *Server) handleAnalyzeAddresses(c *fiber.Ctx) error {
	var params domain.AnalysisParams
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	results, _, err := s.analyzer.Analyze(c.UserContext(), params)
	if err != nil {
		return s.respondError(c, err)
	}

	var b strings.Builder
	for _, h := range results.SelectedHolders {
		b.WriteString(h.Address)
		b.WriteByte('\n')
	}

	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="selected_addresses.txt"`)
	return c.SendString(b.String())
}

// respondError maps a tagged analysis error to its transport status. The
// caller sees the tagged message only; causes stay in the logs.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	tagged := errs.AsError(err)
	if tagged.Kind == errs.KindUnexpected {
		s.logger.Error("analyze request failed", zap.Error(err))
	}
	return c.Status(tagged.HTTPStatus()).JSON(errorResponse{Error: tagged.Message})
}
