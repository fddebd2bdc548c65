package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
	"tle_zone_dashboard/internal/api"
	"tle_zone_dashboard/internal/app/service"
	"tle_zone_dashboard/internal/app/worker"
	"tle_zone_dashboard/internal/common/security"
	"tle_zone_dashboard/internal/domain/repository"
	"tle_zone_dashboard/internal/platform/config"
	"tle_zone_dashboard/internal/platform/database"
	"tle_zone_dashboard/internal/platform/logger"
	"tle_zone_dashboard/internal/platform/queue"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	// 1. Load Configuration
	config.Load()
	cfg := config.AppConfig

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	// 2. Initialize JWT
	security.InitJWT(cfg.JWTKey, cfg.JWTExp)

	// 3. Initialize Database
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	if cfg.DBRunMigrations {
		if err := database.Migrate(cfg.DBConnStr); err != nil {
			zl.Fatal("failed to run migrations", zap.Error(err))
		}
		zl.Info("database migrations applied")
	}
	db, err := database.Connect(startupCtx, cfg.DBConnStr)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// 4. Initialize Redis
	rdb, err := queue.Connect(startupCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		zl.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(db)
	mailRepo := repository.NewPgMailRepository(db)
	memberRepo := repository.NewPgMemberRepository(db)
	questionRepo := repository.NewPgQuestionRepository(db)
	notificationRepo := repository.NewPgNotificationRepository(db)
	deliveryRepo := repository.NewPgDeliveryRepository(db)

	// 6. Initialize Services
	publisher := queue.NewPublisher(rdb, cfg.NotificationQueueName)
	txRunner := service.NewSQLTxRunner(db)
	svcs := api.Services{
		Auth:          service.NewAuthService(memberRepo),
		Customers:     service.NewCustomerService(userRepo),
		Inbox:         service.NewInboxService(mailRepo),
		Members:       service.NewMemberService(memberRepo, txRunner, cfg.BcryptCost, zl),
		Questions:     service.NewQuestionService(questionRepo),
		Notifications: service.NewNotificationService(notificationRepo, deliveryRepo, publisher, txRunner, zl),
		Deliveries:    service.NewDeliveryService(deliveryRepo, zl),
		Stats:         service.NewStatsService(mailRepo, notificationRepo),
	}

	// 7. Delivery worker, unless it runs as its own process (cmd/worker)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	var wg sync.WaitGroup
	if cfg.EmbeddedWorker {
		deliveryWorker := worker.NewDeliveryWorker(rdb, notificationRepo, deliveryRepo, worker.OptionsFromConfig(cfg), zl)
		wg.Add(1)
		go func() {
			defer wg.Done()
			deliveryWorker.Start(workerCtx)
		}()
	}

	// 8. Initialize Router & HTTP Server
	routerOpts := api.Options{
		WebhookSecret: cfg.DeliveryWebhookSecret,
		LoginRate:     rate.Every(time.Minute / time.Duration(cfg.LoginRatePerMinute)),
		LoginBurst:    cfg.LoginRateBurst,
	}
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      api.NewRouter(svcs, routerOpts, zl),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		zl.Info("server starting", zap.String("port", cfg.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("could not listen", zap.String("port", cfg.APIPort), zap.Error(err))
		}
	}()

	<-stop // Wait for interrupt signal

	zl.Info("shutting down server")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("server shutdown failed", zap.Error(err))
	}
	wg.Wait()

	zl.Info("server and worker stopped gracefully")
}
