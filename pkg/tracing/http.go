package tracing

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"smskit/pkg/logging"
)

func GinMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// ContextMiddleware copies the active trace id into the request context so
// the *wCtx logger methods pick it up. It must run after GinMiddleware.
func ContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if traceID := TraceID(ctx); traceID != "" {
			c.Request = c.Request.WithContext(logging.WithTraceID(ctx, traceID))
		}
		c.Next()
	}
}
