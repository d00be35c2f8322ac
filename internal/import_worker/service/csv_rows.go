package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

var (
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}

	errInvalidUTF8 = errors.New("file is not valid UTF-8")
)

// csvRows reads header-keyed rows from an in-memory CSV file
type csvRows struct {
	reader *csv.Reader
	header []string
}

// newCSVRows strips a leading BOM, checks the encoding and consumes the header.
// A file with no header yields no rows.
func newCSVRows(data []byte) (*csvRows, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, errInvalidUTF8
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &csvRows{}, nil
	}
	if err != nil {
		return nil, err
	}

	for i, name := range header {
		header[i] = strings.ToLower(strings.TrimSpace(name))
	}

	return &csvRows{reader: reader, header: header}, nil
}

// next returns the next row with its starting line number.
// It returns io.EOF after the last row and *csv.ParseError for a malformed record.
func (c *csvRows) next() (int, map[string]string, error) {
	if c.reader == nil {
		return 0, nil, io.EOF
	}

	record, err := c.reader.Read()
	if err != nil {
		return 0, nil, err
	}
	line, _ := c.reader.FieldPos(0)

	raw := make(map[string]string, len(c.header))
	for i, name := range c.header {
		if i < len(record) {
			raw[name] = record[i]
		}
	}
	return line, raw, nil
}
