package mw

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ginxFromYt/ARDUINO-API/internal/store"
)

// UserKey is the gin context key the authenticated user is stored under.
const UserKey = "mw.user"

// ActorAuth resolves a bearer API token to a user account. Session
// management lives outside this service; the token lookup is only the
// capability check the command endpoints need for ownership enforcement.
func ActorAuth(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		token := ""
		if len(auth) >= 7 && strings.EqualFold(auth[:7], "bearer ") {
			token = auth[7:]
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		user, err := s.UserByToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			} else {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authentication failed"})
			}
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}
