package mw

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// DeviceAPIKey authenticates embedded clients with a static pre-shared
// key. The key may arrive in X-API-Key, Api-Key or as a bearer token;
// comparison is constant-time.
func DeviceAPIKey(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if key == "" {
			key = c.GetHeader("Api-Key")
		}
		if key == "" {
			key = c.GetHeader("Authorization")
		}
		if len(key) >= 7 && strings.EqualFold(key[:7], "bearer ") {
			key = key[7:]
		}

		if expected == "" || key == "" ||
			subtle.ConstantTimeCompare([]byte(expected), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized - Invalid or missing API key",
				"error":   "INVALID_API_KEY",
			})
			return
		}

		c.Next()
	}
}
