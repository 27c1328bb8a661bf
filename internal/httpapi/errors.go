package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rinde17/investerra-app/internal/domain"
)

type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// httpStatusFor maps service errors to a status and a stable error code.
// Unknown errors are masked as internal.
func httpStatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidTerrain):
		return http.StatusBadRequest, "invalid_terrain"
	case errors.Is(err, domain.ErrTerrainNotFound):
		return http.StatusNotFound, "terrain_not_found"
	case errors.Is(err, domain.ErrAnalysisNotFound):
		return http.StatusNotFound, "analysis_not_found"
	case errors.Is(err, domain.ErrTerrainLimitReached):
		return http.StatusConflict, "terrain_limit_reached"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, context.Canceled):
		// client went away, nobody reads this
		return 499, "cancelled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func respondError(c *gin.Context, err error) {
	status, code := httpStatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	_ = c.Error(err)
	writeError(c, status, code, msg)
}

func writeError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, ErrorResponse{Error: ErrorBody{
		Code:      code,
		Message:   msg,
		RequestID: c.GetString(ctxRequestID),
	}})
}

func abortError(c *gin.Context, status int, code, msg string) {
	writeError(c, status, code, msg)
	c.Abort()
}
