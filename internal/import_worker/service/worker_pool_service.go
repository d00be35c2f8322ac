package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolImportService runs imports on a bounded goroutine pool.
// RunImport blocks until the submitted import has finished.
type WorkerPoolImportService struct {
	baseService ImportService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolImportService(
	baseService ImportService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolImportService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolImportService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// RunImport submits the import to the worker pool and waits for its result
func (s *WorkerPoolImportService) RunImport(ctx context.Context, importRequestID uuid.UUID) error {
	s.logger.Debug("Submitting import to worker pool",
		"import_request_id", importRequestID.String(),
		"running_workers", s.pool.Running(),
	)

	resultChan := make(chan error, 1)

	err := s.pool.Submit(func() {
		resultChan <- s.baseService.RunImport(ctx, importRequestID)
	})
	if err != nil {
		s.logger.Error("Failed to submit import to worker pool",
			"import_request_id", importRequestID.String(),
			"error", err,
		)
		return err
	}

	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolImportService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolImportService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolImportService) Capacity() int {
	return s.pool.Cap()
}
