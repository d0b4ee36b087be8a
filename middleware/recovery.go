package middleware

import (
	"fmt"
	"runtime"

	"github.com/ariebrainware/patient-registry/util"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Recovery turns a panic into a logged 500.
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				var stack [4096]byte
				n := runtime.Stack(stack[:], false)

				logger.Error().
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(stack[:n])).
					Msg("panic recovered")

				util.CallServerError(c, util.APIErrorParams{
					Msg: "Internal server error",
					Err: fmt.Errorf("panic while handling %s %s", c.Request.Method, c.Request.URL.Path),
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}
