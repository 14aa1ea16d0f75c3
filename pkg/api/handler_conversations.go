package api

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	echo "github.com/labstack/echo/v5"
)

// listConversationsHandler handles GET /api/conversations: an
// admin inspection view over the whole Session Store.
func (s *Server) listConversationsHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, ConversationsResponse{Sessions: s.controller.Sessions().List()})
}

// deleteConversationHandler handles DELETE /api/conversations/:sessionId
//: 204 on success, 404 if the session never existed. Also
// best-effort removes the session's trace file — a failure there is
// logged but never fails the request.
func (s *Server) deleteConversationHandler(c *echo.Context) error {
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "sessionId is required")
	}

	if !s.controller.Sessions().Delete(sessionID) {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}

	if s.tracesDir != "" {
		path := filepath.Join(s.tracesDir, sessionID+".jsonl")
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Default().Warn("api: failed to remove trace file on conversation delete", "session_id", sessionID, "error", err)
		}
	}

	return c.NoContent(http.StatusNoContent)
}
