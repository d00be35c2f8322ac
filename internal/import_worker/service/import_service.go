package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/transaction-importer/internal/domain/importrequest"
	"github.com/transaction-importer/internal/domain/rejection"
	"github.com/transaction-importer/internal/domain/transaction"
	"github.com/transaction-importer/internal/platform/storage"
)

// importOutcome holds the counters written to the import request when it completes
type importOutcome struct {
	imported int
	rejected int
}

type ImportServiceImpl struct {
	requests    importrequest.Repository
	files       storage.FileStore
	parser      RowParser
	writer      TransactionWriter
	recorder    RejectionRecorder
	maxFileSize int64
	logger      *slog.Logger
	now         func() time.Time
}

// NewImportService wires the pipeline. A maxFileSize of 0 disables the size check.
func NewImportService(
	requests importrequest.Repository,
	files storage.FileStore,
	parser RowParser,
	writer TransactionWriter,
	recorder RejectionRecorder,
	maxFileSize int64,
	logger *slog.Logger,
) *ImportServiceImpl {
	return &ImportServiceImpl{
		requests:    requests,
		files:       files,
		parser:      parser,
		writer:      writer,
		recorder:    recorder,
		maxFileSize: maxFileSize,
		logger:      logger,
		now:         time.Now,
	}
}

// RunImport imports the file of one import request and records the outcome on it.
//
// Only a missing request, a failure to load it, or a failure to save the
// terminal state is returned. Every other problem ends up in the request's
// error detail with status FAILURE.
func (s *ImportServiceImpl) RunImport(ctx context.Context, importRequestID uuid.UUID) (err error) {
	logger := s.logger.With("import_request_id", importRequestID.String())

	request, err := s.requests.GetByID(ctx, importRequestID)
	if err != nil {
		if errors.Is(err, importrequest.ErrImportRequestNotFound{}) {
			logger.Error("Import request not found")
			return err
		}
		logger.Error("Failed to load import request", "error", err)
		return fmt.Errorf("failed to load import request %s: %w", importRequestID, err)
	}

	if request.Status.IsTerminal() {
		logger.Info("Import request already completed, skipping", "status", request.Status)
		return nil
	}

	logger.Info("Starting import", "file_ref", request.FileRef)

	var outcome importOutcome
	var importErr error
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Panic recovered during import", "panic", p, "stack", string(debug.Stack()))
			importErr = fmt.Errorf("panic during import: %v", p)
		}
		err = s.finalize(context.WithoutCancel(ctx), logger, request, outcome, importErr)
	}()

	outcome, importErr = s.importFile(ctx, logger, request)
	return nil
}

func (s *ImportServiceImpl) importFile(ctx context.Context, logger *slog.Logger, request *importrequest.ImportRequest) (importOutcome, error) {
	data, err := s.readFile(ctx, request.FileRef)
	if err != nil {
		return importOutcome{}, err
	}

	rows, err := newCSVRows(data)
	if err != nil {
		return importOutcome{}, &importrequest.ResourceError{FileRef: request.FileRef, Err: err}
	}

	var records []*transaction.Record
	var rejected []*rejection.RejectedRow

	reject := func(raw map[string]string, verr *transaction.RowValidationError) {
		logger.Warn("Invalid row skipped",
			"line", verr.Line,
			"field", verr.Field,
			"reason", verr.Message,
			"raw", raw,
		)
		rejected = append(rejected, rejection.FromValidationError(request.ID, raw, verr))
	}

	for {
		line, raw, err := rows.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				reject(nil, &transaction.RowValidationError{
					Line:    parseErr.StartLine,
					Message: "malformed CSV record: " + parseErr.Err.Error(),
				})
				continue
			}
			return importOutcome{rejected: len(rejected)}, &importrequest.ResourceError{FileRef: request.FileRef, Err: err}
		}

		result := s.parser.Parse(line, raw)
		if result.Err != nil {
			reject(raw, result.Err)
			continue
		}

		records = append(records, result.Record)
	}

	s.recorder.Record(ctx, request.ID, rejected)

	imported, err := s.writer.WriteAll(ctx, records)
	if err != nil {
		return importOutcome{rejected: len(rejected)}, &importrequest.PersistenceError{Err: err}
	}

	return importOutcome{imported: int(imported), rejected: len(rejected)}, nil
}

// readFile loads the whole upload. Every failure is a ResourceError.
func (s *ImportServiceImpl) readFile(ctx context.Context, fileRef string) ([]byte, error) {
	if strings.TrimSpace(fileRef) == "" {
		return nil, &importrequest.ResourceError{Err: importrequest.ErrEmptyFileRef}
	}

	rc, err := s.files.Open(ctx, fileRef)
	if err != nil {
		return nil, &importrequest.ResourceError{FileRef: fileRef, Err: err}
	}
	defer rc.Close()

	var src io.Reader = rc
	if s.maxFileSize > 0 {
		src = io.LimitReader(rc, s.maxFileSize+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, &importrequest.ResourceError{FileRef: fileRef, Err: err}
	}
	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return nil, &importrequest.ResourceError{
			FileRef: fileRef,
			Err:     fmt.Errorf("file exceeds %d bytes", s.maxFileSize),
		}
	}
	return data, nil
}

// finalize records the terminal state. It runs on every path after acquire.
func (s *ImportServiceImpl) finalize(ctx context.Context, logger *slog.Logger, request *importrequest.ImportRequest, outcome importOutcome, importErr error) error {
	now := s.now().UTC()

	if importErr != nil {
		request.MarkFailed(importErr, outcome.rejected, now)
		logger.Error("Import failed",
			"exception_type", request.ErrorDetail.Type,
			"rejected_rows", outcome.rejected,
			"error", importErr,
		)
	} else {
		request.MarkSucceeded(outcome.imported, outcome.rejected, now)
		logger.Info("Import completed",
			"imported_rows", outcome.imported,
			"rejected_rows", outcome.rejected,
		)
	}

	if err := s.requests.Update(ctx, request); err != nil {
		logger.Error("Failed to save import outcome", "status", request.Status, "error", err)
		return fmt.Errorf("failed to finalize import request %s: %w", request.ID, err)
	}
	return nil
}
