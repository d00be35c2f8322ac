package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/transaction-importer/internal/config"
	"github.com/transaction-importer/internal/currency"
	"github.com/transaction-importer/internal/data/mongo"
	"github.com/transaction-importer/internal/data/postgres"
	"github.com/transaction-importer/internal/import_worker/components"
	"github.com/transaction-importer/internal/import_worker/consumer"
	"github.com/transaction-importer/internal/import_worker/service"
	"github.com/transaction-importer/internal/logger"
	"github.com/transaction-importer/internal/platform/locking"
	"github.com/transaction-importer/internal/platform/messaging/consumers"
	"github.com/transaction-importer/internal/platform/messaging/producers"
	"github.com/transaction-importer/internal/platform/persistence"
	"github.com/transaction-importer/internal/platform/storage"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("import_worker")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting Import Worker",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"base_currency", cfg.Currency.BaseCurrency,
	)

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	redisClient, err := persistence.NewRedisClient(appCtx, log, &cfg.Redis)
	if err != nil {
		log.Error("Failed to initialize Redis", "error", err)
		os.Exit(1)
	}

	files, closeFiles, err := storage.NewFileStore(appCtx, log, &cfg.Storage)
	if err != nil {
		log.Error("Failed to initialize file storage", "error", err)
		os.Exit(1)
	}

	rejectionRepo := mongo.NewRejectionRepository(log, mongoDB.Database())
	if err := rejectionRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to create rejected row indexes", "error", err)
		os.Exit(1)
	}

	importRequests := postgres.NewImportRequestRepository(log, postgresDB)
	importService := components.CreateImportService(
		components.ImportDependencies{
			DB:             postgresDB.Pool(),
			ImportRequests: importRequests,
			Transactions:   postgres.NewTransactionRepository(log, postgresDB),
			Rejections:     rejectionRepo,
			Files:          files,
			Normalizer:     currency.NewNormalizer(cfg.Currency.BaseCurrency, cfg.Currency.Rates, log),
		},
		log,
		cfg,
	)

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}

	hostname, _ := os.Hostname()
	claimer := locking.NewRedisClaimer(log, redisClient, cfg.Redis.KeyPrefix, cfg.Redis.ClaimTTL,
		fmt.Sprintf("%s/%d", hostname, os.Getpid()))

	// A typed nil producer must not reach the handler as a non-nil interface
	var deadLetters producers.DeadLetterPublisher
	if dlqProducer != nil {
		deadLetters = dlqProducer
	}
	jobHandler := consumer.NewImportJobHandler(log, importService, importRequests, claimer, deadLetters)

	// One in-flight message per pool worker keeps the pool busy without queueing on it
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka,
		consumers.WithConcurrency(cfg.WorkerPool.Size),
		consumers.WithDeadLetters(deadLetters),
	)
	if err := kafkaConsumer.Subscribe(appCtx, jobHandler.HandleMessage); err != nil {
		log.Error("Failed to subscribe to import jobs", "error", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case <-kafkaConsumer.Done():
		log.Error("Kafka consumer stopped unexpectedly")
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	select {
	case <-kafkaConsumer.Done():
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached while waiting for the consumer")
	}

	// Done is closed only after every in-flight message finished, so the pool is idle
	if wpService, ok := importService.(*service.WorkerPoolImportService); ok {
		log.Info("Shutting down worker pool", "running_workers", wpService.Running())
		wpService.Shutdown()
	}

	if deadLetters != nil {
		if err = deadLetters.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	if err = redisClient.Close(); err != nil {
		log.Error("Error closing Redis client", "error", err)
	}

	if err = closeFiles(); err != nil {
		log.Error("Error closing file storage", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	log.Info("Import Worker shutdown completed")
}
