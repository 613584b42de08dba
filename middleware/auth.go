package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stackedwins/auth"
	"stackedwins/utils"
)

const bearerPrefix = "Bearer "

// Authenticate requires a bearer token accepted by v and stores the user id
// on the context under utils.UserIDKey.
func Authenticate(v auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) || strings.TrimSpace(header[len(bearerPrefix):]) == "" {
			utils.SendJSONError(c, http.StatusUnauthorized, "No token provided", nil)
			return
		}
		token := strings.TrimSpace(header[len(bearerPrefix):])

		userID, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, auth.ErrTokenExpired) {
				msg = "Token expired"
			}
			utils.SendJSONError(c, http.StatusUnauthorized, msg, err)
			return
		}

		c.Set(utils.UserIDKey, userID)
		c.Next()
	}
}
