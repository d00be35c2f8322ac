package transaction

import "fmt"

// RowValidationError describes why one CSV row could not become a Record
type RowValidationError struct {
	Line    int
	Field   string
	Value   string
	Message string
}

func (e *RowValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s %q: %s", e.Line, e.Field, e.Value, e.Message)
}
