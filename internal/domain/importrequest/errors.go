package importrequest

import (
	"errors"

	"github.com/google/uuid"
)

// Error kinds recorded in ErrorDetail.Type
const (
	KindResourceError    = "ResourceError"
	KindPersistenceError = "PersistenceError"
	KindInternalError    = "InternalError"
)

// ErrImportRequestNotFound indicates a missing import request
type ErrImportRequestNotFound struct {
	ID uuid.UUID
}

func (e ErrImportRequestNotFound) Error() string {
	return "import request not found: " + e.ID.String()
}

// Is implements the errors.Is interface for ErrImportRequestNotFound
func (e ErrImportRequestNotFound) Is(target error) bool {
	t, ok := target.(ErrImportRequestNotFound)
	if !ok {
		return false
	}
	// A nil target ID matches any missing request
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}

// ResourceError means the uploaded file could not be opened or decoded
type ResourceError struct {
	FileRef string
	Err     error
}

func (e *ResourceError) Error() string {
	if e.FileRef == "" {
		return "cannot read import file: " + e.Err.Error()
	}
	return "cannot read import file " + e.FileRef + ": " + e.Err.Error()
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// PersistenceError means the bulk insert of imported rows failed
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "failed to persist imported transactions: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// DetailFromError classifies err into the structured detail stored on a failed request
func DetailFromError(err error) ErrorDetail {
	if err == nil {
		return ErrorDetail{}
	}

	var resourceErr *ResourceError
	var persistenceErr *PersistenceError
	switch {
	case errors.As(err, &resourceErr):
		return ErrorDetail{Type: KindResourceError, Message: err.Error()}
	case errors.As(err, &persistenceErr):
		return ErrorDetail{Type: KindPersistenceError, Message: err.Error()}
	default:
		return ErrorDetail{Type: KindInternalError, Message: err.Error()}
	}
}
