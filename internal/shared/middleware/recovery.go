package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/journey-app/server/internal/shared/logger"
	"github.com/journey-app/server/internal/shared/response"
)

// Recovery turns a panicking handler into a 500 with the same error
// body shape the handlers use, and logs the stack with the request ID
// so it can be traced. If log is nil a default logger is used.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.New(nil)
	}

	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("panic recovered",
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"request_id", GetRequestID(c),
					"stack", string(debug.Stack()),
				)

				response.ErrorWithCode(c, http.StatusInternalServerError,
					"INTERNAL_ERROR", "internal server error")
				c.Abort()
			}
		}()
		c.Next()
	}
}
