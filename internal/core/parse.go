package core

// parse.go turns an uploaded file into a Table. CSV and tab-delimited text
// go through charset detection first; spreadsheets are read via excelize.
// Structural problems (unsupported extension, unreadable content, no header
// row) fail the whole file before validation begins.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/qhuube/vatreport/internal/encoding"
)

// ErrUnsupportedFormat is returned for files that are not CSV, TSV, or
// Excel spreadsheets.
var ErrUnsupportedFormat = errors.New("unsupported file type")

// ErrNoHeader is returned when a file has no usable header row.
var ErrNoHeader = errors.New("no headers found in the file")

// ParseUpload reads an uploaded file into a Table. The first non-empty row
// is the header; later rows that are entirely empty are dropped.
func ParseUpload(fileName string, data []byte) (*Table, error) {
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".csv":
		return parseDelimited(data, ',')
	case ".txt":
		return parseDelimited(data, '\t')
	case ".xls", ".xlsx":
		return parseSpreadsheet(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func parseDelimited(data []byte, delimiter rune) (*Table, error) {
	decoded, err := encoding.NewUTF8Reader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode upload: %w", err)
	}

	reader := csv.NewReader(decoded)
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read delimited file: %w", err)
	}
	return tableFromRecords(records)
}

func parseSpreadsheet(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("spreadsheet has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet rows: %w", err)
	}
	return tableFromRecords(records)
}

func tableFromRecords(records [][]string) (*Table, error) {
	var header []string
	var rows []Row

	for _, record := range records {
		if isEmptyRecord(record) {
			continue
		}
		if header == nil {
			header = make([]string, len(record))
			for i, cell := range record {
				header[i] = strings.TrimSpace(cell)
			}
			continue
		}
		row := make(Row, len(header))
		for i := range header {
			if i < len(record) {
				row[i] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	if len(header) == 0 {
		return nil, ErrNoHeader
	}
	return &Table{Columns: header, Rows: rows}, nil
}

func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
