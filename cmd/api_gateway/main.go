package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/transaction-importer/internal/api_gateway"
	"github.com/transaction-importer/internal/api_gateway/outbox_poller"
	"github.com/transaction-importer/internal/api_gateway/service"
	"github.com/transaction-importer/internal/config"
	"github.com/transaction-importer/internal/data/mongo"
	"github.com/transaction-importer/internal/data/postgres"
	"github.com/transaction-importer/internal/logger"
	"github.com/transaction-importer/internal/platform/messaging/producers"
	"github.com/transaction-importer/internal/platform/persistence"
	"github.com/transaction-importer/internal/platform/storage"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

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

	files, closeFiles, err := storage.NewFileStore(appCtx, log, &cfg.Storage)
	if err != nil {
		log.Error("Failed to initialize file storage", "error", err)
		os.Exit(1)
	}

	// The gateway only relays import jobs; the worker consumes them
	jobProducer, err := producers.NewImportJobProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize import job producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	importRequestRepo := postgres.NewImportRequestRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	rejectionRepo := mongo.NewRejectionRepository(log, mongoDB.Database())

	// Initialize services
	importService := service.NewImportService(
		log,
		postgresDB.Pool(),
		importRequestRepo,
		outboxRepo,
		rejectionRepo,
		files,
		cfg.Storage.MaxUploadSize,
	)
	transactionService := service.NewTransactionService(log, transactionRepo)
	reportService := service.NewReportService(log, transactionRepo)

	poller := outbox_poller.NewPoller(
		&cfg.Outbox,
		outboxRepo,
		outbox_poller.NewImportJobPublisher(outboxRepo, jobProducer, log),
		log,
	)

	server := api_gateway.NewServer(log, cfg, importService, transactionService, reportService)
	log.Info("REST server initialized")

	errChan := make(chan error, 1)
	var wg sync.WaitGroup

	go func() {
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	log.Info("Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Stop accepting uploads before the poller drains
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	cancelAppCtx()
	wg.Wait()

	if err = jobProducer.Close(); err != nil {
		log.Error("Error closing import job producer", "error", err)
	}

	if err = closeFiles(); err != nil {
		log.Error("Error closing file storage", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serverErr != nil {
		log.Error("API gateway shutdown with errors", "error", serverErr)
		os.Exit(1)
	}
	log.Info("API gateway shutdown completed")
}
