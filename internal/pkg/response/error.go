package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/logger"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Kind  apperror.Kind `json:"kind"`
	Error string        `json:"error"`
}

// Error sends a JSON error response.
// It checks if the error is an AppError to determine the status code and kind.
// Anything else is logged and reported as a 500 without leaking details.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, ErrorResponse{Kind: appErr.Kind, Error: appErr.Message})
		return
	}

	logger.FromContext(c).WithError(err).Error("unhandled error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Kind:  apperror.KindInternal,
		Error: "internal server error",
	})
}

// Abort is Error followed by c.Abort, for use in middleware.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// BindError reports a request binding failure as a validation error.
func BindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"kind":    apperror.KindValidation,
		"error":   "invalid request",
		"details": err.Error(),
	})
}
