package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stackedwins/apperr"
	"stackedwins/logger"
)

// Keys stored on the gin context by the middleware chain.
const (
	CorrelationIDKey = "correlationID"
	ExposeDetailsKey = "exposeErrorDetails"
	UserIDKey        = "userID"
	LoggerKey        = "logger"
)

const genericServerError = "Internal server error"

// SendJSONError sends the standard error envelope and logs the internal error.
// For 5xx errors, a missing public message is replaced by a generic one.
// Outside production the internal error text is returned as details.
func SendJSONError(c *gin.Context, statusCode int, publicMsg string, internalError error) {
	if publicMsg == "" && statusCode >= http.StatusInternalServerError {
		publicMsg = genericServerError
	}
	response := gin.H{"error": publicMsg, "correlationId": CorrelationID(c)}
	if internalError != nil && c.GetBool(ExposeDetailsKey) {
		response["details"] = internalError.Error()
	}

	log := RequestLogger(c)
	switch {
	case statusCode >= http.StatusInternalServerError:
		log.Error("Request error",
			"status_code", statusCode, "public_message", publicMsg, "error", internalError,
			"path", c.Request.URL.Path, "method", c.Request.Method, "user_id", c.GetString(UserIDKey))
	case internalError != nil:
		log.Warn("Request rejected",
			"status_code", statusCode, "public_message", publicMsg, "error", internalError, "path", c.Request.URL.Path)
	default:
		log.Info("Request rejected", "status_code", statusCode, "public_message", publicMsg, "path", c.Request.URL.Path)
	}

	c.AbortWithStatusJSON(statusCode, response)
}

// RespondError maps an application error to its status and public message.
func RespondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := apperr.Status(kind)
	msg := apperr.PublicMessage(err)
	switch kind {
	case apperr.KindInternal:
		msg = genericServerError
	case apperr.KindUnauthorized:
		if msg == "" {
			msg = "Authentication failed"
		}
	}
	var ae *apperr.Error
	internal := err
	if errors.As(err, &ae) && ae.Err == nil {
		internal = nil
	}
	SendJSONError(c, status, msg, internal)
}

// CorrelationID returns the id assigned to the request, or "unknown".
func CorrelationID(c *gin.Context) string {
	if id := c.GetString(CorrelationIDKey); id != "" {
		return id
	}
	return "unknown"
}

// RequestLogger returns the request-scoped logger, or a no-op logger.
func RequestLogger(c *gin.Context) *logger.Logger {
	if v, ok := c.Get(LoggerKey); ok {
		if l, ok := v.(*logger.Logger); ok && l != nil {
			return l
		}
	}
	return logger.FromContext(c.Request.Context(), logger.Nop())
}
