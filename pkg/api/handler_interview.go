package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/JeWeidn/tkc-Chatbot/pkg/session"
)

// interviewStartHandler handles POST /api/interview/start.
func (s *Server) interviewStartHandler(c *echo.Context) error {
	var req InterviewStartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := requireSessionID(req.SessionID); err != nil {
		return err
	}

	ctx, cancel := withRequestTimeout(c)
	defer cancel()

	answer, err := s.controller.Start(ctx, req.SessionID, req.Force)
	if err != nil {
		return mapDomainError(err)
	}
	if req.Mode != "" {
		if err := s.controller.SetMode(req.SessionID, session.Mode(req.Mode)); err != nil {
			return mapDomainError(err)
		}
	}

	return c.JSON(http.StatusOK, TurnResponse{Answer: answer, Sources: []string{}, SessionID: req.SessionID})
}

// interviewResetHandler handles POST /api/interview/reset.
func (s *Server) interviewResetHandler(c *echo.Context) error {
	var req InterviewResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := requireSessionID(req.SessionID); err != nil {
		return err
	}

	ctx, cancel := withRequestTimeout(c)
	defer cancel()

	answer, err := s.controller.Reset(ctx, req.SessionID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, TurnResponse{Answer: answer, Sources: []string{}, SessionID: req.SessionID})
}

// retrieveHandler handles POST /api/retrieve — the single per-turn entry
// point into the Dialogue Controller.
func (s *Server) retrieveHandler(c *echo.Context) error {
	var req RetrieveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := requireSessionID(req.SessionID); err != nil {
		return err
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	if req.Mode != "" {
		if err := s.controller.SetMode(req.SessionID, session.Mode(req.Mode)); err != nil {
			return mapDomainError(err)
		}
	}

	ctx, cancel := withRequestTimeout(c)
	defer cancel()

	answer, err := s.controller.HandleTurn(ctx, req.SessionID, req.Question)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, TurnResponse{Answer: answer, Sources: []string{}, SessionID: req.SessionID})
}
