package api

import (
	"net/http"
	"os"
	"path/filepath"

	echo "github.com/labstack/echo/v5"
)

// tracesHandler handles GET /api/traces/:sessionId: streams the on-disk JSON-lines
// trace file verbatim as application/jsonl. 404s if the session itself is
// unknown; a known session with no oracle calls yet streams an empty body
// rather than 404ing, since readers must tolerate an in-flight/absent file
func (s *Server) tracesHandler(c *echo.Context) error {
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "sessionId is required")
	}
	if s.controller.Sessions().Get(sessionID) == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}

	c.Response().Header().Set("Content-Type", "application/jsonl")

	if s.tracesDir == "" {
		return c.NoContent(http.StatusOK)
	}
	path := filepath.Join(s.tracesDir, sessionID+".jsonl")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c.NoContent(http.StatusOK)
		}
		return mapDomainError(err)
	}
	return c.Blob(http.StatusOK, "application/jsonl", raw)
}
