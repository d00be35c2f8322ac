package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/transaction-importer/internal/api_gateway/middleware"
	"github.com/transaction-importer/internal/api_gateway/service"
	"github.com/transaction-importer/internal/domain/importrequest"
	"github.com/transaction-importer/internal/domain/rejection"
)

// ImportHandler handles HTTP requests for CSV imports
type ImportHandler struct {
	importService service.ImportService
	logger        *slog.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(logger *slog.Logger, importService service.ImportService) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		logger:        logger,
	}
}

// Upload accepts a multipart CSV file and schedules its import
func (h *ImportHandler) Upload(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		RespondUnauthorized(c, "")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.logger.Warn("Upload without file field", "error", err)
		RespondBadRequest(c, "A multipart field named 'file' is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", "filename", fileHeader.Filename, "error", err)
		RespondInternalError(c)
		return
	}
	defer file.Close()

	request, err := h.importService.AcceptUpload(c.Request.Context(), service.Upload{
		Filename:      fileHeader.Filename,
		Size:          fileHeader.Size,
		Content:       file,
		RequestedBy:   userID,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		var tooLarge service.ErrFileTooLarge
		switch {
		case errors.Is(err, service.ErrNotCSV):
			RespondBadRequest(c, err.Error())
		case errors.As(err, &tooLarge):
			RespondPayloadTooLarge(c, err.Error())
		default:
			h.logger.Error("Failed to accept upload", "filename", fileHeader.Filename, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, mapImportRequestToResponse(request))
}

// GetByID returns the processing state of an import request, 404 if not found
func (h *ImportHandler) GetByID(c *gin.Context) {
	id, ok := h.parseImportID(c)
	if !ok {
		return
	}

	request, err := h.importService.GetImport(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, importrequest.ErrImportRequestNotFound{}) {
			RespondNotFound(c, "Import request not found")
			return
		}
		h.logger.Error("Failed to get import request", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapImportRequestToResponse(request))
}

// ListRejections returns the paginated rows an import skipped
func (h *ImportHandler) ListRejections(c *gin.Context) {
	id, ok := h.parseImportID(c)
	if !ok {
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	rows, total, err := h.importService.ListRejections(c.Request.Context(), id, pagination.Page, pagination.PerPage)
	if err != nil {
		if errors.Is(err, importrequest.ErrImportRequestNotFound{}) {
			RespondNotFound(c, "Import request not found")
			return
		}
		h.logger.Error("Failed to list rejected rows", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	response := make([]RejectedRowResponse, 0, len(rows))
	for _, row := range rows {
		response = append(response, mapRejectedRowToResponse(row))
	}

	RespondWithPaginatedData(c, http.StatusOK, response, pagination.Page, pagination.PerPage, int(total))
}

func (h *ImportHandler) parseImportID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid import request ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid import request ID")
		return uuid.Nil, false
	}
	return id, true
}

// mapImportRequestToResponse maps an import request to its response DTO
func mapImportRequestToResponse(request *importrequest.ImportRequest) ImportRequestResponse {
	response := ImportRequestResponse{
		ID:               request.ID.String(),
		Status:           string(request.Status),
		OriginalFilename: request.OriginalFilename,
		RequestedBy:      request.RequestedBy,
		ImportedRows:     request.ImportedRows,
		RejectedRows:     request.RejectedRows,
		CreatedAt:        request.CreatedAt.Format(time.RFC3339),
	}

	if !request.ErrorDetail.IsEmpty() {
		response.ErrorDetail = &ErrorDetailResponse{
			ExceptionType:  request.ErrorDetail.Type,
			ExceptionValue: request.ErrorDetail.Message,
		}
	}
	if request.CompletedAt != nil {
		response.CompletedAt = request.CompletedAt.Format(time.RFC3339)
	}

	return response
}

func mapRejectedRowToResponse(row *rejection.RejectedRow) RejectedRowResponse {
	return RejectedRowResponse{
		Line:      row.Line,
		Field:     row.Field,
		Reason:    row.Reason,
		Raw:       row.Raw,
		CreatedAt: row.CreatedAt.Format(time.RFC3339),
	}
}
