package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// evaluationStartHandler handles POST /api/evaluation/start.
func (s *Server) evaluationStartHandler(c *echo.Context) error {
	var req EvaluationStartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := requireSessionID(req.SessionID); err != nil {
		return err
	}

	ctx, cancel := withRequestTimeout(c)
	defer cancel()

	result, err := s.evaluation.Start(ctx, req.SessionID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, EvaluationStartResponse{
		Answer:            result.Answer,
		EvalSchema:        result.Schema,
		Summary:           result.Summary,
		KnowledgeMarkdown: result.KnowledgeMarkdown,
		NewKnowledge:      result.NewKnowledge,
		SessionID:         req.SessionID,
	})
}

// evaluationSubmitHandler handles POST /api/evaluation/submit. Any rating
// outside 1..5 yields HTTP 400.
func (s *Server) evaluationSubmitHandler(c *echo.Context) error {
	var req EvaluationSubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := requireSessionID(req.SessionID); err != nil {
		return err
	}

	ctx, cancel := withRequestTimeout(c)
	defer cancel()

	message, err := s.evaluation.Submit(ctx, req.SessionID, req.Ratings, req.Comments, req.Corrections)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, EvaluationSubmitResponse{Message: message, SessionID: req.SessionID})
}
