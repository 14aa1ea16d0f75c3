// Package api provides the HTTP surface over the interview orchestration
// core, built on echo v5.
package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/JeWeidn/tkc-Chatbot/pkg/catalog"
	"github.com/JeWeidn/tkc-Chatbot/pkg/dialogue"
	"github.com/JeWeidn/tkc-Chatbot/pkg/evaluation"
)

// Server is the HTTP API server fronting the Dialogue Controller and
// Evaluation Service.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server

	controller *dialogue.Controller
	evaluation *evaluation.Service
	catalog    *catalog.Index
	tracesDir  string
	logger     *slog.Logger
}

// NewServer wires the API routes over the given components.
func NewServer(ctl *dialogue.Controller, evalSvc *evaluation.Service, idx *catalog.Index, tracesDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	e := echo.New()

	s := &Server{
		echo:       e,
		controller: ctl,
		evaluation: evalSvc,
		catalog:    idx,
		tracesDir:  tracesDir,
		logger:     logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.Use(middleware.BodyLimit(1024 * 1024))
	s.echo.Use(recoverMiddleware(s.logger))
	s.echo.Use(requestLogger(s.logger))

	s.echo.GET("/api/health", s.healthHandler)

	s.echo.POST("/api/interview/start", s.interviewStartHandler)
	s.echo.POST("/api/interview/reset", s.interviewResetHandler)
	s.echo.POST("/api/retrieve", s.retrieveHandler)

	s.echo.POST("/api/evaluation/start", s.evaluationStartHandler)
	s.echo.POST("/api/evaluation/submit", s.evaluationSubmitHandler)

	s.echo.GET("/api/conversations", s.listConversationsHandler)
	s.echo.DELETE("/api/conversations/:sessionId", s.deleteConversationHandler)

	s.echo.GET("/api/traces/:sessionId", s.tracesHandler)
}

// Start starts the HTTP server on addr (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.echo}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener —
// used by tests that need a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// requireSessionID rejects a missing sessionId with a 400.
func requireSessionID(sessionID string) error {
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "sessionId is required")
	}
	return nil
}

const requestTimeout = 25 * time.Second

func withRequestTimeout(c *echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}
