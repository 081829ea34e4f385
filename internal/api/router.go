package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/ginxFromYt/ARDUINO-API/config"
	"github.com/ginxFromYt/ARDUINO-API/internal/mw"
	"github.com/ginxFromYt/ARDUINO-API/internal/store"
	"github.com/ginxFromYt/ARDUINO-API/internal/waterquality"
)

// NewRouter creates and configures a new Gin router.
//
// Three auth contexts share the /api group: actor endpoints resolve a
// bearer token to a user, device endpoints check the pre-shared key, and
// dashboard reads are public but rate-limited and cached.
func NewRouter(cfg *config.Config, s store.Store, ingestor *waterquality.Ingestor, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, ingestor, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), 5, cfg.Server.RequestIPHeader)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	deviceAuth := mw.DeviceAPIKey(cfg.Device.APIKey)
	actorAuth := mw.ActorAuth(s)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Actor endpoints (owner-authenticated)
		api.POST("/door/command", actorAuth, handler.SendCommand)
		api.GET("/door/status", actorAuth, handler.GetLockStatus)

		// Embedded device endpoints (pre-shared key)
		api.GET("/door/command", deviceAuth, handler.GetPendingCommand)
		api.POST("/door/status", deviceAuth, handler.UpdateStatus)
		api.POST("/door/validate-rfid", deviceAuth, handler.ValidateRfid)
		api.POST("/water-quality", deviceAuth, handler.IngestReading)

		// Dashboard reads (public)
		api.GET("/water-quality/latest", caching, handler.GetLatest)
		api.GET("/water-quality/recent", caching, handler.GetRecent)
		api.GET("/water-quality/device-status", handler.GetDeviceStatus)
		api.GET("/water-quality/devices", caching, handler.GetDevices)

		// Alert push subscriptions
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
