// Package main is the entry point for the HTTP API.
// It initializes all dependencies, starts the dispute auto-resolution
// scheduler and serves the API until it receives a shutdown signal.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stagepay/internal/config"
	"stagepay/internal/domain/policy"
	"stagepay/internal/handlers"
	"stagepay/internal/mq"
	"stagepay/internal/repositories"
	"stagepay/internal/repositories/cache"
	"stagepay/internal/routes"
	"stagepay/internal/services/autoresolve"
	"stagepay/internal/services/booking"
	"stagepay/internal/services/cancellation"
	"stagepay/internal/services/dispute"
	"stagepay/internal/services/notification"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

func main() {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logOutput := config.InitLogger(cfg.Log)

	db, err := repositories.InitDB(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Printf("⚠️ Failed to close database connection: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go logPoolStats(ctx, db)

	healthChecks := map[string]handlers.HealthCheckFunc{
		"database": func(ctx context.Context) error { return sqlDB.PingContext(ctx) },
	}

	// Redis and RabbitMQ are optional; without them the sweep runs unlocked
	// and notifications are only stored.
	var (
		locker    autoresolve.Locker
		publisher notification.Publisher
		admins    *cache.CacheService
	)
	if cfg.Redis.Host != "" {
		client := cache.NewRedisClient(cfg.Redis)
		defer client.Close()
		if err := cache.HealthCheck(ctx, client); err != nil {
			log.Printf("⚠️ Redis unavailable, continuing without it: %v", err)
		} else {
			log.Println("✅ Redis connected")
			locker = cache.NewLocker(client)
			admins = cache.NewCacheService(client, 5*time.Minute)
			healthChecks["redis"] = func(ctx context.Context) error { return cache.HealthCheck(ctx, client) }
		}
	}
	if cfg.Rabbit.URL != "" {
		p, err := mq.NewPublisher(cfg.Rabbit.URL, cfg.Rabbit.Exchange)
		if err != nil {
			log.Printf("⚠️ RabbitMQ unavailable, notifications will not be published: %v", err)
		} else {
			log.Printf("✅ RabbitMQ connected, publishing to %s", cfg.Rabbit.Exchange)
			publisher = p
			defer p.Close()
		}
	}

	clock := clockwork.NewRealClock()
	store := repositories.NewStore(db)
	notifier := notification.NewService(publisher)
	if admins != nil {
		notifier.WithAdminCache(admins)
	}
	bookingService := booking.NewService(store, notifier)
	disputeService := dispute.NewService(store, notifier, clock, cfg.DisputeResponseWindow)
	cancellationService := cancellation.NewService(store, notifier, clock, policy.NewCalculator(cfg.Cancellation))

	sweeper := autoresolve.NewSweeper(store, disputeService, clock, locker, cfg.AutoResolve.BatchSize, cfg.AutoResolve.LockTTL)
	scheduler, err := autoresolve.NewScheduler(sweeper, store, clock, cfg.AutoResolve.Interval)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "stagepay",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		Output: logOutput,
	}))

	routes.SetupRoutes(app, routes.Dependencies{
		JWTSecret:           cfg.JWTSecret,
		Store:               store,
		Notifier:            notifier,
		BookingService:      bookingService,
		DisputeService:      disputeService,
		CancellationService: cancellationService,
		HealthChecks:        healthChecks,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("⚠️ HTTP shutdown: %v", err)
	}
	if err := scheduler.Shutdown(); err != nil {
		log.Printf("⚠️ Scheduler shutdown: %v", err)
	}
}

// logPoolStats periodically reports connection pool usage.
func logPoolStats(ctx context.Context, db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := sqlDB.Stats()
			log.Printf("DB Stats: Open=%d, Idle=%d, InUse=%d, WaitCount=%d, WaitDuration=%s",
				stats.OpenConnections, stats.Idle, stats.InUse, stats.WaitCount, stats.WaitDuration)
		}
	}
}
