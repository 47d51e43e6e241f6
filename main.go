package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zion/gateway/internal/calendar"
	"zion/gateway/internal/chat"
	"zion/gateway/internal/config"
	"zion/gateway/internal/database"
	"zion/gateway/internal/handlers"
	"zion/gateway/internal/logger"
	"zion/gateway/internal/middleware"
	"zion/gateway/internal/routes"
	"zion/gateway/internal/session"
	ws "zion/gateway/internal/websocket"
	"zion/gateway/internal/workspace"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Sessions live in postgres when configured, in memory otherwise
	var sessions session.Store
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal("failed to migrate database", zap.Error(err))
		}
		sessions = session.NewPostgresStore(pool)
	} else {
		log.Warn("DATABASE_URL not set, sessions are kept in memory")
		sessions = session.NewMemoryStore()
	}

	registry := workspace.NewRegistry(workspace.Options{
		UpstreamURL:  cfg.UpstreamURL,
		HTTPClient:   &http.Client{Timeout: cfg.UpstreamTimeout},
		Retries:      cfg.UpstreamRetries,
		FeedPageSize: cfg.FeedPageSize,
		Calendar: calendar.Options{
			Modules:      cfg.Modules,
			FanoutLimit:  cfg.CalendarFanoutLimit,
			GroupTimeout: cfg.CalendarGroupTimeout,
			Location:     cfg.CalendarLocation,
		},
		IdleTTL: cfg.WorkspaceIdleTTL,
	}, log)
	go registry.Run(ctx, time.Minute)
	go purgeSessions(ctx, sessions, log)

	hub := ws.NewHub(chat.NewTypingTracker(6*time.Second), registry.RoomAuthorizer(), registry.EventAuthorizer(), log)
	go hub.Run(ctx)
	log.Info("websocket hub initialized")

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:               "ZION Gateway v1.0",
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigin,
		AllowCredentials: true,
	}))

	h := handlers.New(cfg, registry, sessions, hub, log)
	routes.SetupRoutes(app, h, middleware.Auth(cfg.JWTSecret, sessions, log))

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("shutdown", zap.Error(err))
		}
	}()

	log.Info("server starting", zap.String("port", cfg.Port), zap.String("upstream", cfg.UpstreamURL))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// purgeSessions drops expired sessions every hour
func purgeSessions(ctx context.Context, store session.Store, log *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := store.Purge(ctx)
			if err != nil {
				log.Warn("purge sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("purged expired sessions", zap.Int64("count", n))
			}
		case <-ctx.Done():
			return
		}
	}
}
