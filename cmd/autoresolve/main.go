// Command autoresolve runs a single auto-resolution sweep and exits. It is
// meant for deployments that trigger the sweep from an external cron instead
// of the scheduler embedded in the API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stagepay/internal/config"
	"stagepay/internal/mq"
	"stagepay/internal/repositories"
	"stagepay/internal/repositories/cache"
	"stagepay/internal/services/autoresolve"
	"stagepay/internal/services/dispute"
	"stagepay/internal/services/notification"

	"github.com/jonboulle/clockwork"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "maximum duration of the sweep")
	flag.Parse()

	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	config.InitLogger(cfg.Log)

	db, err := repositories.InitDB(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}
	defer sqlDB.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var (
		locker    autoresolve.Locker
		publisher notification.Publisher
	)
	if cfg.Redis.Host != "" {
		client := cache.NewRedisClient(cfg.Redis)
		defer client.Close()
		if err := cache.HealthCheck(ctx, client); err != nil {
			log.Printf("⚠️ Redis unavailable, sweeping without the lock: %v", err)
		} else {
			locker = cache.NewLocker(client)
		}
	}
	if cfg.Rabbit.URL != "" {
		p, err := mq.NewPublisher(cfg.Rabbit.URL, cfg.Rabbit.Exchange)
		if err != nil {
			log.Printf("⚠️ RabbitMQ unavailable, notifications will not be published: %v", err)
		} else {
			publisher = p
			defer p.Close()
		}
	}

	clock := clockwork.NewRealClock()
	store := repositories.NewStore(db)
	disputeService := dispute.NewService(store, notification.NewService(publisher), clock, cfg.DisputeResponseWindow)
	sweeper := autoresolve.NewSweeper(store, disputeService, clock, locker, cfg.AutoResolve.BatchSize, cfg.AutoResolve.LockTTL)

	var rep autoresolve.Report
	err = runWithTimeout(ctx, *timeout, func(ctx context.Context) error {
		var err error
		rep, err = sweeper.Sweep(ctx)
		return err
	})
	if err != nil {
		log.Printf("Sweep failed: %v", err)
		os.Exit(1)
	}
	log.Printf("Sweep completed: due=%d resolved=%d skipped=%d failed=%d locked=%v",
		rep.Due, rep.Resolved, rep.Skipped, rep.Failed, rep.Locked)
	if rep.Failed > 0 {
		os.Exit(2)
	}
}

// runWithTimeout runs fn and gives up once timeout has elapsed.
func runWithTimeout(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- fn(ctx)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return fmt.Errorf("sweep timed out after %v", timeout)
	}
}
