package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/andikasp/desa-wisata-api/internal/config"
	"github.com/andikasp/desa-wisata-api/internal/handler"
	"github.com/andikasp/desa-wisata-api/internal/middleware"
)

// Register wires every route of the API onto the provided Echo instance.
//
// Layout:
//   GET  /healthz                  – liveness probe
//   GET  /images/*                 – static serving of the upload directory
//   POST /api/auth/register|login  – open, rate limited
//   GET  /api/data/:type[/:id]     – open reads, response cached
//   POST/PUT/DELETE /api/data/...  – bearer-token protected mutations
func Register(e *echo.Echo, cfg config.Config, a *handler.AuthHandler, items *handler.ItemHandler, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Uploaded images are public content; ImageRef.dir values are filenames
	// under this mount.
	e.Static("/images", cfg.UploadDir)

	// Auth endpoints sit behind the token bucket so credential guessing is
	// throttled.
	auth := e.Group("/api/auth")
	auth.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	auth.POST("/register", a.Register)
	auth.POST("/login", a.Login)

	// Public reads, cached.  The cache middleware only ever touches the
	// methods its config lists (GET), so sharing the group with mutations
	// below would be safe too; keeping them apart keeps the wiring obvious.
	reads := e.Group("/api/data")
	reads.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	reads.GET("/:type", items.GetAll)
	reads.GET("/:type/:id", items.GetByID)

	// Mutations require a valid bearer token.
	writes := e.Group("/api/data")
	writes.Use(middleware.JWTAuth(cfg.JWTSecret))
	writes.POST("/:type", items.Create)
	writes.PUT("/:type/:id", items.Update)
	writes.DELETE("/:type/:id", items.Delete)
}
