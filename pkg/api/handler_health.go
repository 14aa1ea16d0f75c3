package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/JeWeidn/tkc-Chatbot/pkg/version"
)

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	CatalogSize    int    `json:"catalog_size"`
	SessionCount   int    `json:"session_count"`
	OracleDisabled bool   `json:"oracle_disabled"`
}

// healthHandler handles GET /api/health.
func (s *Server) healthHandler(c *echo.Context) error {
	sessions := s.controller.Sessions().List()
	disabled := false
	for _, st := range sessions {
		if st.Flags.LLMDisabled {
			disabled = true
			break
		}
	}

	status := "healthy"
	if disabled {
		status = "degraded"
	}

	return c.JSON(http.StatusOK, HealthResponse{
		Status:         status,
		Version:        version.Full(),
		CatalogSize:    s.catalog.Len(),
		SessionCount:   len(sessions),
		OracleDisabled: disabled,
	})
}
