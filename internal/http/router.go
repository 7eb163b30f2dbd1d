package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/magma-incinerator/backend/internal/config"
	"github.com/magma-incinerator/backend/internal/http/handlers"
	"github.com/magma-incinerator/backend/internal/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	burnHandler *handlers.BurnHandler,
	profileHandler *handlers.ProfileHandler,
	metaHandler *handlers.MetaHandler,
	adminHandler *handlers.AdminHandler,
	burnFeed *handlers.BurnFeedHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Meta (public)
	api.Get("/meta/incinerator", metaHandler.GetIncinerator)

	// Rate-limited public endpoints
	public := api.Group("", middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	public.Get("/magma/profile", profileHandler.GetProfile)
	public.Get("/magma/leaderboard", profileHandler.GetLeaderboard)
	public.Get("/magma/burns", profileHandler.GetBurns)
	public.Post("/magma/record-burn", burnHandler.RecordBurn)

	// Admin
	admin := api.Group("/admin", middleware.AdminAuthMiddleware(cfg))
	admin.Post("/adjust-points", adminHandler.AdjustPoints)

	// Live burn feed
	app.Use("/ws/burns", handlers.WSUpgradeMiddleware())
	app.Get("/ws/burns", websocket.New(burnFeed.HandleWS))
}
