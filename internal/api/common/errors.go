// Package common holds helpers shared by the HTTP handlers.
package common

import (
	"errors"
	"log/slog"
	"net/http"

	"signage-panel/internal/domain/access"
	"signage-panel/internal/domain/campaigns"
	"signage-panel/internal/domain/groups"
	"signage-panel/internal/domain/slides"
	"signage-panel/internal/domain/users"

	"github.com/gin-gonic/gin"
)

var statusByError = []struct {
	err    error
	status int
}{
	{access.ErrUnauthenticated, http.StatusUnauthorized},
	{access.ErrForbidden, http.StatusForbidden},
	{slides.ErrLocked, http.StatusForbidden},
	{groups.ErrNotFound, http.StatusNotFound},
	{campaigns.ErrNotFound, http.StatusNotFound},
	{slides.ErrNotFound, http.StatusNotFound},
	{users.ErrNotFound, http.StatusNotFound},
	{groups.ErrNameTaken, http.StatusConflict},
	{users.ErrUsernameTaken, http.StatusConflict},
	{groups.ErrNameEmpty, http.StatusBadRequest},
	{users.ErrPasswordTooShort, http.StatusBadRequest},
	{campaigns.ErrNameRequired, http.StatusBadRequest},
	{campaigns.ErrInvalidWindow, http.StatusBadRequest},
	{campaigns.ErrInvalidTime, http.StatusBadRequest},
	{campaigns.ErrInvalidPriority, http.StatusBadRequest},
}

// StatusFor maps domain errors onto HTTP statuses. Unknown errors are 500.
func StatusFor(err error) int {
	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// WriteError responds with {"error": ...}. Internal errors are logged and
// their details kept out of the response.
func WriteError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Default().Error("request failed",
			"event", "http_request_failed",
			"module", "api",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err.Error(),
		)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
