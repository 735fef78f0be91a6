// Package ingest reads the three row-oriented tabular sources (vendor order
// metrics, vendor geo coordinates, district polygons) into generic field-map
// rows. All typing and validation happens later, in the store build.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Row is one record as a mapping from column name to raw cell value.
type Row map[string]string

// ReadFile reads a CSV file with a header row into rows.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

// Read reads CSV data with a header row into rows. Short records are padded
// with empty cells; completely empty lines are skipped.
func Read(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows, pad below
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		row := make(Row, len(header))
		empty := true
		for i, name := range header {
			val := ""
			if i < len(rec) {
				val = strings.TrimSpace(rec[i])
			}
			if val != "" {
				empty = false
			}
			row[name] = val
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
