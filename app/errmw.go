package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler turns a panic inside a handler into a 500 JSON response.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("unhandled panic",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, H{
					"error":   "internal server error",
					"details": "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}
