package tools

import (
	"net/http"

	"cloud.google.com/go/logging"
	"github.com/gin-gonic/gin"
)

// Logger is the slice of *logging.Logger the handlers use. Tests
// substitute an in-memory implementation to capture entries.
type Logger interface {
	Log(e logging.Entry)
}

// LogError logs the error and writes the JSON error response for the
// given status. Dependency failures (5xx) get a generic message; the
// detail stays in the server-side log only.
func LogError(logger Logger, c *gin.Context, status int, err error) {
	logger.Log(logging.Entry{
		Severity: logging.Error,
		Payload:  err.Error(),
		Labels:   map[string]string{"status": http.StatusText(status)},
	})

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "internal server error"
	}

	c.JSON(status, gin.H{
		"error": message,
	})
}
