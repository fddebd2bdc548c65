package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
	"tle_zone_dashboard/internal/app/worker"
	"tle_zone_dashboard/internal/domain/repository"
	"tle_zone_dashboard/internal/platform/config"
	"tle_zone_dashboard/internal/platform/database"
	"tle_zone_dashboard/internal/platform/logger"
	"tle_zone_dashboard/internal/platform/queue"

	"go.uber.org/zap"
)

// Standalone delivery worker. Run the server with EMBEDDED_WORKER=false when using it.
func main() {
	config.Load()
	cfg := config.AppConfig

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startupCtx, startupCancel := context.WithTimeout(ctx, 30*time.Second)
	defer startupCancel()

	db, err := database.Connect(startupCtx, cfg.DBConnStr)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	rdb, err := queue.Connect(startupCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		zl.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	deliveryWorker := worker.NewDeliveryWorker(
		rdb,
		repository.NewPgNotificationRepository(db),
		repository.NewPgDeliveryRepository(db),
		worker.OptionsFromConfig(cfg),
		zl,
	)

	// Graceful shutdown on SIGINT or SIGTERM
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		deliveryWorker.Start(ctx)
	}()

	<-sigs
	zl.Info("shutdown signal received")
	cancel()

	wg.Wait()
	zl.Info("worker exited cleanly")
}
