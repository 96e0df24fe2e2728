// Package ingest reads climate inputs from CSV and YAML files.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

func readHeader(cr *csv.Reader, expected []string) error {
	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("reading CSV header: %w", err)
	}
	if len(header) < len(expected) {
		return fmt.Errorf("expected at least %d columns, got %d", len(expected), len(header))
	}
	for i, col := range expected {
		if strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")) != col {
			return fmt.Errorf("expected column %d to be %q, got %q", i, col, header[i])
		}
	}
	return nil
}

// eachRecord calls fn for every data row after the header. lineNum counts the
// header as line 1.
func eachRecord(cr *csv.Reader, fn func(record []string, lineNum int) error) error {
	lineNum := 1
	for {
		lineNum++
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading CSV line %d: %w", lineNum, err)
		}
		if err := fn(record, lineNum); err != nil {
			return err
		}
	}
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}
