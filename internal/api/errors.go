package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"go-career-hunter/internal/models"
	"go-career-hunter/internal/orchestrator"

	"github.com/gin-gonic/gin"
)

// ValidationError is a bad request from the client
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// respondError maps domain errors to status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var vErr *ValidationError

	switch {
	case errors.As(err, &vErr):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateName), errors.Is(err, models.ErrDuplicateLink):
		status = http.StatusConflict
	case errors.Is(err, orchestrator.ErrAlreadyRunning):
		status = http.StatusConflict
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		message = "internal server error"
	}
	c.JSON(status, gin.H{"success": false, "error": message})
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}
