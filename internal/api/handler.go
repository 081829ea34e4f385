package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"github.com/ginxFromYt/ARDUINO-API/internal/model"
	"github.com/ginxFromYt/ARDUINO-API/internal/mw"
	"github.com/ginxFromYt/ARDUINO-API/internal/store"
	"github.com/ginxFromYt/ARDUINO-API/internal/waterquality"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	ingestor *waterquality.Ingestor
	webpush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, ingestor *waterquality.Ingestor, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:    s,
		ingestor: ingestor,
		webpush:  webpushOptions,
	}
}

// currentUser returns the actor placed in the context by mw.ActorAuth.
func currentUser(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(mw.UserKey)
	if !ok {
		return model.User{}, false
	}
	user, ok := v.(model.User)
	return user, ok
}

// abortStoreError translates core error kinds to transport responses so
// callers can tell "bad request shape" from "unknown entity" apart.
func abortStoreError(c *gin.Context, err error) {
	var verr *waterquality.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrNotOwned):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "lock does not belong to user"})
	case errors.Is(err, store.ErrInvalidCommand), errors.Is(err, store.ErrInvalidStatus):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
