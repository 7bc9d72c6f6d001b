package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"lunchbuddy-backend/config"
	"lunchbuddy-backend/internal/mw"
	"lunchbuddy-backend/internal/store"
	"lunchbuddy-backend/internal/window"
)

// NewRouter creates and configures a new Gin router for the ops API.
func NewRouter(cfg *config.ServerConfig, s store.Store, w *window.Window) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, w)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), 5)

	// Status responses are cached briefly so the window tally is not hammered.
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	caching := mw.Cache(cache.New(ttl, 10*ttl), ttl)

	r.GET("/healthz", handler.Healthz)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/status", caching, handler.GetStatus)
	}

	return r
}
