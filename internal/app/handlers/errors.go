package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kalpovskii/taskboard/internal/app/models"
)

const redactedMessage = "Something went wrong"

// errorWriter maps service errors to responses. Unexpected errors are logged
// and their text is only sent to the client when expose is set.
type errorWriter struct {
	logger *slog.Logger
	expose bool
}

func (w errorWriter) write(c *gin.Context, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": models.ErrNotFound.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		w.logger.Warn("request timed out", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
	default:
		w.logger.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		w.internal(c, err.Error())
	}
}

func (w errorWriter) internal(c *gin.Context, message string) {
	if !w.expose {
		message = redactedMessage
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error", "message": message})
}
