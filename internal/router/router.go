// Package router wires handlers and middleware into the HTTP route table.
package router

import (
	"fmt"
	"net/http"

	"gamecatalog/backend/internal/auth"
	"gamecatalog/backend/internal/guest"
	"gamecatalog/backend/internal/handler"
	"gamecatalog/backend/internal/hub"
	"gamecatalog/backend/internal/logging"
	"gamecatalog/backend/internal/metrics"
	"gamecatalog/backend/internal/middleware"
	"gamecatalog/backend/internal/proxy"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps are the long-lived services the handlers need.
type Deps struct {
	Importer handler.GameImporter
	Gateway  *proxy.Gateway
	Hasher   *guest.Hasher
	Limiter  *middleware.RateLimiter // throttles the image proxy and guest writes per client IP

	// TrustedProxies may set X-Forwarded-For. With none, the client IP is the socket peer.
	TrustedProxies []string
}

// New builds the engine. Every route is registered here and nowhere else.
func New(deps Deps) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(deps.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	router.Use(logging.RequestID(), logging.GinLogger(), gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	guestWrites := deps.Limiter.Middleware(func(c *gin.Context) {
		metrics.GuestWrites.WithLabelValues("rate_limited").Inc()
	})
	proxyLimit := deps.Limiter.Middleware(func(c *gin.Context) {
		metrics.ImageProxyRequests.WithLabelValues("rate_limited").Inc()
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	apiV1.Use(guest.Middleware(deps.Hasher))
	{
		apiV1.GET("/image-proxy", proxyLimit, handler.ProxyImage(deps.Gateway))

		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/login", guestWrites, handler.LoginUser)
			authRoutes.GET("/me", auth.AuthMiddleware(), handler.GetMe)
		}

		// Public catalog routes
		gameRoutes := apiV1.Group("/games")
		{
			gameRoutes.GET("", handler.GetGames)
			gameRoutes.GET("/:id", handler.GetGameByID)
			gameRoutes.GET("/:id/ratings", handler.GetGameRatings)
			gameRoutes.POST("/:id/ratings", guestWrites, handler.RateGame)
			gameRoutes.DELETE("/:id/ratings", handler.DeleteMyRating)
		}
		apiV1.GET("/tags", handler.GetTags)

		wishlistRoutes := apiV1.Group("/wishlist")
		{
			wishlistRoutes.GET("", handler.GetWishlist)
			wishlistRoutes.POST("", guestWrites, handler.SuggestWishlistItem)
			wishlistRoutes.POST("/:id/vote", guestWrites, handler.VoteWishlistItem)
			wishlistRoutes.DELETE("/:id/vote", handler.UnvoteWishlistItem)
		}

		apiV1.POST("/messages", guestWrites, handler.CreateMessage)

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
		{
			tags := adminRoutes.Group("/tags")
			{
				tags.POST("", handler.CreateTag)
				tags.GET("", handler.GetTags)
				tags.PUT("/:id", handler.UpdateTag)
				tags.DELETE("/:id", handler.DeleteTag)
			}

			adminGameRoutes := adminRoutes.Group("/games")
			{
				adminGameRoutes.POST("/import", handler.ImportGame(deps.Importer))
				adminGameRoutes.POST("", handler.CreateGame)
				adminGameRoutes.PUT("/:id", handler.UpdateGame)
				adminGameRoutes.DELETE("/:id", handler.DeleteGame)
			}

			messages := adminRoutes.Group("/messages")
			{
				messages.GET("", handler.ListMessages)
				messages.PUT("/:id/read", handler.MarkMessageRead)
				messages.DELETE("/:id", handler.DeleteMessage)
			}

			adminRoutes.DELETE("/wishlist/:id", handler.DeleteWishlistItem)
			adminRoutes.GET("/events", handler.StreamEvents(hub.GlobalHub))
		}
	}

	return router, nil
}
