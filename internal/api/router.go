package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"carwash-kiosk-backend/config"
	"carwash-kiosk-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 10*time.Minute)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Kiosk front-end
		api.GET("/services", caching, h.GetServices)
		api.GET("/status", h.GetStatus)

		api.POST("/session/select", h.SelectService)
		api.POST("/session/confirm", h.ConfirmSession)
		api.POST("/session/cancel", h.CancelSession)
		api.GET("/session", h.GetSession)

		// Operator push subscriptions
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)

		api.POST("/admin/login", h.AdminLogin)

		admin := api.Group("/admin")
		admin.Use(h.RequireAdmin)
		{
			admin.GET("/services", h.AdminListServices)
			admin.POST("/services", h.AdminCreateService)
			admin.PUT("/services/:id", h.AdminUpdateService)
			admin.DELETE("/services/:id", h.AdminDeleteService)
			admin.POST("/services/:id/toggle", h.AdminToggleService)

			admin.POST("/maintenance", h.AdminToggleMaintenance)
			admin.PUT("/password", h.AdminUpdatePassword)
			admin.PUT("/header", h.AdminUpdateHeader)

			admin.POST("/device/command", h.AdminSendCommand)
			admin.POST("/device/reconnect", h.AdminReconnect)

			admin.GET("/logs", h.AdminGetLogs)
		}
	}

	return r
}
