// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/openkb/product-kb/internal/config"
	"github.com/openkb/product-kb/internal/database"
	"github.com/openkb/product-kb/internal/handlers"
	"github.com/openkb/product-kb/internal/middleware"
	"github.com/openkb/product-kb/internal/services"
)

func Initialize(store *database.Store, cfg *config.Config) *gin.Engine {
	// Initialize services
	itemService := services.NewItemService(store)
	imageService := services.NewImageService(store, cfg.Upload)

	// Initialize handlers
	itemHandler := handlers.NewItemHandler(itemService)
	imageHandler := handlers.NewImageHandler(imageService, cfg.Upload)

	uploadLimiter := middleware.NewRateLimiter(rate.Limit(cfg.Upload.RatePerSecond), cfg.Upload.RateBurst)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())

	// Liveness
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := r.Group("/api")
	{
		api.GET("/search", itemHandler.Search)

		items := api.Group("/items")
		{
			items.POST("", itemHandler.Create)
			items.GET("/:id", itemHandler.Get)
			items.PUT("/:id", itemHandler.Update)
			items.DELETE("/:id", itemHandler.Delete)

			items.POST("/:id/images", uploadLimiter.Middleware(), imageHandler.Upload)
			items.GET("/:id/images", imageHandler.List)
		}

		api.DELETE("/images/:image_id", imageHandler.Delete)
	}

	r.GET("/media/:image_id", imageHandler.Serve)

	return r
}
