package rejection

import (
	"time"

	"github.com/google/uuid"
	"github.com/transaction-importer/internal/domain/transaction"
)

// RejectedRow is the audit copy of a CSV row the importer skipped
type RejectedRow struct {
	ImportRequestID uuid.UUID         `json:"import_request_id"`
	Line            int               `json:"line"`
	Raw             map[string]string `json:"raw"`
	Field           string            `json:"field,omitempty"`
	Reason          string            `json:"reason"`
	CreatedAt       time.Time         `json:"created_at"`
}

// FromValidationError builds the audit record for a row rejected during import
func FromValidationError(importRequestID uuid.UUID, raw map[string]string, verr *transaction.RowValidationError) *RejectedRow {
	return &RejectedRow{
		ImportRequestID: importRequestID,
		Line:            verr.Line,
		Raw:             raw,
		Field:           verr.Field,
		Reason:          verr.Message,
		CreatedAt:       time.Now().UTC(),
	}
}
