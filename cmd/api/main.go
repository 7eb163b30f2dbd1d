package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/magma-incinerator/backend/internal/config"
	"github.com/magma-incinerator/backend/internal/db"
	"github.com/magma-incinerator/backend/internal/events"
	apphttp "github.com/magma-incinerator/backend/internal/http"
	"github.com/magma-incinerator/backend/internal/http/handlers"
	"github.com/magma-incinerator/backend/internal/moralis"
	"github.com/magma-incinerator/backend/internal/repositories"
	"github.com/magma-incinerator/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	ledgerRepo := repositories.NewLedgerRepo(pool)
	burnRepo := repositories.NewBurnRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Services
	verifier := moralis.NewClient(cfg.MoralisBaseURL, cfg.MoralisAPIKey, cfg.MoralisChain, cfg.VerifyMaxAttempts, cfg.VerifyRetryDelay, log)
	burnService := services.NewBurnService(ledgerRepo, burnRepo, verifier, publisher, cfg, log)
	profileService := services.NewProfileService(ledgerRepo, burnRepo, rdb, cfg.LeaderboardCacheTTL, log)
	adminService := services.NewAdminService(ledgerRepo, log)

	// Handlers
	burnHandler := handlers.NewBurnHandler(burnService, log)
	profileHandler := handlers.NewProfileHandler(profileService, cfg.LeaderboardMaxLimit, log)
	metaHandler := handlers.NewMetaHandler(cfg)
	adminHandler := handlers.NewAdminHandler(adminService, log)
	burnFeed := handlers.NewBurnFeedHub(subscriber, log)

	// Start burn feed hub
	burnFeed.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, burnHandler, profileHandler, metaHandler, adminHandler, burnFeed)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
