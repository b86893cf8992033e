package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"neurograph/pkg/errors"
)

// respondError converts a failure into the uniform JSON failure shape:
// validation errors map to 400, not-found to 404, everything else to 500.
// Internal details are logged, never exposed.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
	case errors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": err.Error(),
		})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
	}
}
