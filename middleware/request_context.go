package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stackedwins/logger"
	"stackedwins/utils"
)

const CorrelationHeader = "X-Correlation-Id"

// RequestContext assigns the correlation id, reusing the caller's header when
// present, and attaches a logger carrying it to the request.
func RequestContext(base *logger.Logger, exposeErrorDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(CorrelationHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(CorrelationHeader, id)

		reqLog := base.With("correlation_id", id)
		c.Set(utils.CorrelationIDKey, id)
		c.Set(utils.ExposeDetailsKey, exposeErrorDetails)
		c.Set(utils.LoggerKey, reqLog)
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), reqLog))

		c.Next()
	}
}
