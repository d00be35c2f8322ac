package importrequest

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyRequestedBy = errors.New("requested_by cannot be empty")
	ErrEmptyFileRef     = errors.New("file reference cannot be empty")
)

// Status defines import request processing states
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// IsTerminal reports whether no further processing may happen
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailure
}

// ErrorDetail captures the kind and message of the error that failed an import.
// The zero value means no error.
type ErrorDetail struct {
	Type    string `json:"exception_type,omitempty"`
	Message string `json:"exception_value,omitempty"`
}

func (d ErrorDetail) IsEmpty() bool {
	return d.Type == "" && d.Message == ""
}

// ImportRequest tracks one uploaded CSV file through the import pipeline
type ImportRequest struct {
	ID               uuid.UUID   `json:"id"`
	Status           Status      `json:"status"`
	FileRef          string      `json:"file_ref"`
	OriginalFilename string      `json:"original_filename"`
	ErrorDetail      ErrorDetail `json:"error_detail"`
	ImportedRows     int         `json:"imported_rows"`
	RejectedRows     int         `json:"rejected_rows"`
	RequestedBy      string      `json:"requested_by"`
	CreatedAt        time.Time   `json:"created_at"`
	CompletedAt      *time.Time  `json:"completed_at,omitempty"`
}

// NewImportRequest creates a pending import request for an accepted upload
func NewImportRequest(fileRef, originalFilename, requestedBy string) (*ImportRequest, error) {
	if requestedBy == "" {
		return nil, ErrEmptyRequestedBy
	}
	if fileRef == "" {
		return nil, ErrEmptyFileRef
	}

	return &ImportRequest{
		ID:               uuid.New(),
		Status:           StatusPending,
		FileRef:          fileRef,
		OriginalFilename: originalFilename,
		RequestedBy:      requestedBy,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// MarkSucceeded moves the request to SUCCESS and clears any previous error
func (r *ImportRequest) MarkSucceeded(imported, rejected int, at time.Time) {
	r.Status = StatusSuccess
	r.ErrorDetail = ErrorDetail{}
	r.ImportedRows = imported
	r.RejectedRows = rejected
	r.CompletedAt = &at
}

// MarkFailed moves the request to FAILURE and records the cause.
// Nothing is persisted on failure, so the imported count is reset.
func (r *ImportRequest) MarkFailed(cause error, rejected int, at time.Time) {
	r.Status = StatusFailure
	r.ErrorDetail = DetailFromError(cause)
	r.ImportedRows = 0
	r.RejectedRows = rejected
	r.CompletedAt = &at
}
