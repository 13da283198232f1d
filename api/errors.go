package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/confbooking/internal/domain"
	"github.com/gin-gonic/gin"
)

// writeError maps domain errors onto HTTP status codes. Rule violations
// stay 4xx; only ErrOperationFailed and unknown errors become 500.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrConferenceNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConferenceExists),
		errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrExistingBooking),
		errors.Is(err, domain.ErrOverlappingConference):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConferenceStarted), domain.IsWrongRequest(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
