package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"photosession/internal/pkg/apperror"
	"photosession/internal/pkg/logger"
)

func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.AbortWithStatusJSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// StatusFor maps an error category to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindGuard:
		return http.StatusUnprocessableEntity
	case apperror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes the envelope for err. Unclassified errors are logged and
// reported as INTERNAL_ERROR without leaking their text.
func FromError(c *gin.Context, err error) {
	ae, ok := apperror.As(err)
	if !ok {
		logger.FromContext(c.Request.Context()).Error().Err(err).Msg("unhandled error")
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	message := ae.Message
	// keep the detail added with apperror.Wrapf
	if full := err.Error(); full != ae.Error() && !errors.Is(err, apperror.ErrValidation) {
		message = full
	}
	if len(ae.Fields) > 0 {
		ErrorWithDetails(c, StatusFor(ae.Kind), ae.Code, message, ae.Fields)
		return
	}
	Error(c, StatusFor(ae.Kind), ae.Code, message)
}
