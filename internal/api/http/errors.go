package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/workspace"
)

// errBadRequest marks a malformed request body
type errBadRequest struct{ err error }

func (e errBadRequest) Error() string { return e.err.Error() }
func (e errBadRequest) Unwrap() error { return e.err }

// respondError maps domain errors onto status codes with a JSON body
func respondError(c *gin.Context, err error) {
	var maxBytes *http.MaxBytesError
	var bad errBadRequest

	status := http.StatusBadRequest
	switch {
	case errors.Is(err, topic.ErrUnknown):
		status = http.StatusNotFound
	case errors.Is(err, workspace.ErrUnknownKind):
		status = http.StatusNotFound
	case errors.As(err, &maxBytes):
		status = http.StatusRequestEntityTooLarge
	case errors.As(err, &bad):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
