package handler

import (
	"errors"
	"net/http"

	"docvault/internal/apperr"
	"docvault/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// statusOf maps an apperr kind to its HTTP status
func statusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError writes the error body. Unexpected errors are logged and their
// text is not sent to the client.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	status := statusOf(err)
	msg := apperr.Message(err)
	if status == http.StatusInternalServerError || msg == "" {
		log.Error().Err(err).Str("path", c.FullPath()).Int("status", status).Msg("request failed")
		_ = c.Error(err)
		if msg == "" {
			msg = http.StatusText(status)
		}
	}
	c.JSON(status, model.NewErrorResponse(msg, ""))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid request body", err.Error()))
}
