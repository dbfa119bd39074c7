package main

import (
	"os"

	"gamecatalog/backend/internal/bgg"
	"gamecatalog/backend/internal/config"
	"gamecatalog/backend/internal/database"
	"gamecatalog/backend/internal/guest"
	"gamecatalog/backend/internal/logging"
	"gamecatalog/backend/internal/middleware"
	"gamecatalog/backend/internal/proxy"
	"gamecatalog/backend/internal/router"
	"gamecatalog/backend/internal/validation"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "gamecatalog/backend/docs" // registers the generated Swagger docs
)

// @title           Board Game Catalog API
// @version         1.0
// @description     Public catalog, guest interactions and admin panel for a personal board game collection.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := config.LoadConfig(); err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	cfg := config.AppConfig

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stdout})
	gin.SetMode(cfg.GinMode)

	if err := validation.Register(); err != nil {
		logging.Fatal().Err(err).Msg("Failed to register validators")
	}

	if err := database.Connect(cfg.DatabaseURL); err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := database.SeedAdmin(database.DB, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logging.Fatal().Err(err).Msg("Failed to seed admin account")
	}

	importer := bgg.NewImporter(
		database.DB,
		bgg.NewClient(cfg.BGGAPIURL, cfg.BGGAPIToken, cfg.UpstreamTimeout),
		bgg.WithUpsert(cfg.BGGImportUpsert),
	)
	gateway := proxy.New(
		cfg.AllowedHosts(),
		proxy.WithUserAgent(cfg.ProxyUserAgent),
		proxy.WithMaxBytes(cfg.ProxyMaxBytes),
		proxy.WithTimeout(cfg.UpstreamTimeout),
	)

	engine, err := router.New(router.Deps{
		Importer:       importer,
		Gateway:        gateway,
		Hasher:         guest.NewHasher(cfg.GuestHashSalt),
		Limiter:        middleware.NewRateLimiter(cfg.RateLimitPerMinute),
		TrustedProxies: cfg.TrustedProxyList(),
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build router")
	}

	logging.Info().
		Str("port", cfg.Port).
		Strs("proxy_hosts", cfg.AllowedHosts()).
		Strs("trusted_proxies", cfg.TrustedProxyList()).
		Bool("bgg_upsert", cfg.BGGImportUpsert).
		Msg("Server is running")
	logging.Info().Msgf("Swagger UI is available at http://localhost:%s/swagger/index.html", cfg.Port)
	if err := engine.Run(":" + cfg.Port); err != nil {
		logging.Fatal().Err(err).Msg("Server stopped")
	}
}
