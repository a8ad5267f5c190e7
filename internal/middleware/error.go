package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "collegebank/internal/errors"
	"collegebank/internal/logger"
)

// ErrorBody is the JSON shape of every error response.
func ErrorBody(appErr *apperrors.AppError) gin.H {
	return gin.H{"error": appErr.Message, "code": appErr.Code}
}

// RespondWithError writes err as a JSON error response. AppErrors keep their
// status, code and message; anything else becomes a generic internal error.
// Internal causes are logged and never sent to the client.
func RespondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logger.Get().Errorw("unexpected error",
			"request_id", logger.RequestID(c.Request.Context()),
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		c.JSON(apperrors.ErrInternalServer.StatusCode, ErrorBody(apperrors.ErrInternalServer))
		return
	}

	if appErr.Internal != nil {
		logger.Get().Errorw("app error",
			"request_id", logger.RequestID(c.Request.Context()),
			"code", appErr.Code,
			"message", appErr.Message,
			"internal", appErr.Internal.Error(),
			"path", c.Request.URL.Path,
		)
	}
	c.JSON(appErr.StatusCode, ErrorBody(appErr))
}

func abortWithError(c *gin.Context, err error) {
	RespondWithError(c, err)
	c.Abort()
}

// ErrorHandler returns a Gin middleware that converts errors set on the Gin
// context into consistent JSON error responses.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		// Process the last error (most relevant in a middleware chain)
		RespondWithError(c, c.Errors.Last().Err)
	}
}
