package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"coterran/internal/service"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// Fail maps the service sentinels onto HTTP statuses; anything unrecognized is
// treated as a persistence failure.
func Fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMarketNotFound),
		errors.Is(err, service.ErrUserNotFound):
		Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrPredictionConflict),
		errors.Is(err, service.ErrMarketResolved):
		Error(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, service.ErrUserNotApproved):
		Error(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, service.ErrMarketNotOpen),
		errors.Is(err, service.ErrMarketClosed),
		errors.Is(err, service.ErrInvalidPrediction),
		errors.Is(err, service.ErrInvalidConfidence),
		errors.Is(err, service.ErrInvalidOutcome),
		errors.Is(err, service.ErrInvalidSnapshotType):
		Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		Error(c, http.StatusBadGateway, err.Error(), nil)
	}
}
