package server

import (
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/paperflow/pkg/telemetry/correlation"
	"go.uber.org/zap"
)

const correlationHeader = "X-Correlation-Id"

// CorrelationMiddleware attaches a correlation id to the request context,
// honoring one supplied by the caller.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if incoming := c.GetHeader(correlationHeader); incoming != "" {
			ctx = correlation.ContextWithCorrelationID(ctx, incoming)
		}
		ctx, cid := correlation.EnsureCorrelationID(ctx)

		c.Writer.Header().Set(correlationHeader, cid)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// QuotaRateLimit throttles quota mutations per tenant. The limiter degrades
// open: redis trouble lets the request through rather than failing writes.
func (s *Server) QuotaRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}

		tenantID, err := s.tenantIDParam(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		allowed, err := s.limiter.AllowTenant(c.Request.Context(), tenantID)
		if err != nil {
			s.log.Warn("rate limiter unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			s.metrics.RecordRateLimited(c.FullPath())
			AbortWithError(c, ErrTooManyRequests)
			return
		}

		c.Next()
	}
}
