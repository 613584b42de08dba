package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"stackedwins/utils"
)

// Logger logs every request through the request-scoped logger, at a level
// chosen by the response status.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		fields := []interface{}{
			"status", statusCode,
			"method", c.Request.Method,
			"path", path,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		}
		if userID := c.GetString(utils.UserIDKey); userID != "" {
			fields = append(fields, "user_id", userID)
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, "errors", errs)
		}

		log := utils.RequestLogger(c)
		switch {
		case statusCode >= http.StatusInternalServerError:
			log.Error("HTTP request", fields...)
		case statusCode >= http.StatusBadRequest:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

const defaultOrigin = "http://localhost:5173"

// Cors allows the configured origins with credentials.
func Cors(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = []string{defaultOrigin}
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Accept", "X-Requested-With", CorrelationHeader},
		ExposeHeaders:    []string{CorrelationHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// Recovery turns a panic into the standard 500 envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		utils.RequestLogger(c).Error("Panic recovered", "panic", recovered, "path", c.Request.URL.Path)
		utils.SendJSONError(c, http.StatusInternalServerError, "", nil)
	})
}
