package service

import (
	"errors"
	"fmt"
)

// ErrNotCSV is returned for uploads without a .csv extension
var ErrNotCSV = errors.New("only .csv files are accepted")

// ErrFileTooLarge is returned for uploads above the configured size limit
type ErrFileTooLarge struct {
	Size  int64
	Limit int64
}

func (e ErrFileTooLarge) Error() string {
	return fmt.Sprintf("file size %d exceeds the limit of %d bytes", e.Size, e.Limit)
}
