package api

import (
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"sparesmart-backend/config"
	"sparesmart-backend/internal/mw"
)

// Rate limiters of clients idle for this long are dropped.
const rateLimiterIdle = 10 * time.Minute

// NewRouter creates and configures a new Gin router.
func NewRouter(handler *Handler, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(
		mw.RequestID(),
		mw.Logger(),
		mw.Recovery(),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedExtensions([]string{".xlsx"})),
	)

	r.GET("/healthz", handler.Health)

	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst, rateLimiterIdle)

	cacheStore := cache.New(cfg.Cache.TTL, 2*cfg.Cache.TTL)
	caching := mw.Cache(cacheStore, cfg.Cache.TTL)

	api := r.Group("/api")
	api.Use(mw.RateLimiter(limiter))
	{
		api.POST("/auth/login", handler.Login)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		protected := api.Group("")
		protected.Use(mw.Auth(handler.auth), caching)

		protected.GET("/inventory", handler.GetInventory)
		protected.GET("/search", handler.Search)
		protected.GET("/export/inventory.xlsx", handler.ExportInventory)

		protected.GET("/lines", handler.ListLines)
		protected.POST("/lines", handler.CreateLine)
		protected.GET("/lines/:id", handler.GetLine)
		protected.PATCH("/lines/:id", handler.UpdateLine)
		protected.DELETE("/lines/:id", handler.DeleteLine)
		protected.GET("/lines/:id/machines", handler.ListLineMachines)
		protected.GET("/lines/:id/checkweighers", handler.ListLineCheckweighers)

		protected.GET("/machines", handler.ListMachines)
		protected.POST("/machines", handler.CreateMachine)
		protected.GET("/machines/:id", handler.GetMachine)
		protected.PATCH("/machines/:id", handler.UpdateMachine)
		protected.DELETE("/machines/:id", handler.DeleteMachine)
		protected.GET("/machines/:id/parts", handler.ListMachineParts)

		protected.GET("/parts", handler.ListParts)
		protected.POST("/parts", handler.CreatePart)
		protected.GET("/parts/aggregate", handler.AggregateParts)
		protected.GET("/parts/:id", handler.GetPart)
		protected.PATCH("/parts/:id", handler.UpdatePart)
		protected.DELETE("/parts/:id", handler.DeletePart)

		protected.GET("/checkweighers", handler.ListCheckweighers)
		protected.POST("/checkweighers", handler.CreateCheckweigher)
		protected.GET("/checkweighers/:id", handler.GetCheckweigher)
		protected.PATCH("/checkweighers/:id", handler.UpdateCheckweigher)
		protected.DELETE("/checkweighers/:id", handler.DeleteCheckweigher)

		// Subscriptions are per browser and must not be served from the shared cache.
		subs := api.Group("/subscriptions")
		subs.Use(mw.Auth(handler.auth))
		subs.GET("", handler.GetSubscription)
		subs.PUT("", handler.PutSubscription)
		subs.DELETE("", handler.DeleteSubscription)
	}

	return r
}
