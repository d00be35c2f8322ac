package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/transaction-importer/internal/domain/transaction"
)

var errInvertedDateRange = errors.New("date_from must not be after date_to")

// dateParamError reports a query date that could not be parsed
type dateParamError struct {
	Field string
	Value string
}

func (e *dateParamError) Error() string {
	return fmt.Sprintf("%s must be a YYYY-MM-DD date or an RFC3339 timestamp", e.Field)
}

// parseDateRange converts the report query into a half-open range.
// A date_to given as a plain date covers that whole day.
func parseDateRange(params DateRangeParams) (transaction.DateRange, error) {
	var dates transaction.DateRange

	if params.DateFrom != "" {
		from, _, err := parseQueryTime(params.DateFrom)
		if err != nil {
			return dates, &dateParamError{Field: "date_from", Value: params.DateFrom}
		}
		dates.From = &from
	}

	if params.DateTo != "" {
		to, dateOnly, err := parseQueryTime(params.DateTo)
		if err != nil {
			return dates, &dateParamError{Field: "date_to", Value: params.DateTo}
		}
		if dateOnly {
			to = to.AddDate(0, 0, 1)
		} else {
			// timestamps are stored with microsecond precision
			to = to.Add(time.Microsecond)
		}
		dates.To = &to
	}

	if dates.From != nil && dates.To != nil && !dates.From.Before(*dates.To) {
		return dates, errInvertedDateRange
	}

	return dates, nil
}

func parseQueryTime(value string) (time.Time, bool, error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), false, nil
}
