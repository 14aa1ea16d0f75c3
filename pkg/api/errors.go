package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/JeWeidn/tkc-Chatbot/pkg/evaluation"
)

// mapDomainError maps a domain-layer error to an echo.HTTPError: known
// validation sentinels become 400, everything else is logged and surfaced
// as a generic 500.
func mapDomainError(err error) *echo.HTTPError {
	if errors.Is(err, evaluation.ErrInvalidRating) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	slog.Default().Error("api: unexpected domain error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
