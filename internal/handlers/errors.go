package handlers

import (
	"errors"
	"net/http"

	apperrors "mytickets/internal/errors"
	"mytickets/internal/logger"

	"github.com/gin-gonic/gin"
)

// errorStatuses is checked in order; the first match wins
var errorStatuses = []struct {
	err    error
	status int
}{
	{apperrors.ErrInvalidPayload, http.StatusUnprocessableEntity},
	{apperrors.ErrMalformedID, http.StatusBadRequest},
	{apperrors.ErrEventAlreadyHappened, http.StatusForbidden},
	{apperrors.ErrDuplicateName, http.StatusConflict},
	{apperrors.ErrDuplicateCode, http.StatusConflict},
	{apperrors.ErrDuplicateEmail, http.StatusConflict},
	{apperrors.ErrAlreadyUsed, http.StatusConflict},
	{apperrors.ErrEventNotFound, http.StatusNotFound},
	{apperrors.ErrTicketNotFound, http.StatusNotFound},
	{apperrors.ErrNotFound, http.StatusNotFound},
}

// handleServiceError maps domain errors to status codes. The body carries the
// sentinel message, never the wrapped chain.
func (h *Handlers) handleServiceError(c *gin.Context, err error, msg string) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   apperrors.ErrInvalidPayload.Error(),
			"details": verr.Fields,
		})
		return
	}

	for _, m := range errorStatuses {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{"error": m.err.Error()})
			return
		}
	}

	_ = c.Error(err)
	logger.WithContext(c.Request.Context()).Error(msg, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
