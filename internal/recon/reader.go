package recon

// reader.go turns uploaded bytes into a header row plus raw data rows.
// CSV and XLSX are supported; format is chosen by file extension. All
// failures here are whole-import fatal: nothing downstream runs on a
// partially parsed file.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrFileTooLarge rejects uploads above the configured limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnsupportedFormat rejects extensions other than .csv/.xlsx.
	ErrUnsupportedFormat = errors.New("unsupported file type")

	// ErrEmptySheet rejects files with no header or zero data rows.
	ErrEmptySheet = errors.New("no data rows")
)

// Sheet is a fully read spreadsheet: one header row and the raw data
// rows beneath it.
type Sheet struct {
	Format  string // "csv" or "xlsx"
	Headers []string
	Rows    [][]string
}

// ReadSheet parses an uploaded file into a Sheet.
// The first non-blank row is the header; everything after it is data.
func ReadSheet(filename string, data []byte, maxSize int64) (*Sheet, error) {
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d byte limit", ErrFileTooLarge, len(data), maxSize)
	}

	var (
		records [][]string
		format  string
		err     error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		format = "csv"
		records, err = readCSV(data)
	case ".xlsx", ".xlsm":
		format = "xlsx"
		records, err = readXLSX(data)
	default:
		return nil, fmt.Errorf("%w: %q (expected .csv or .xlsx)", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}

	// Skip leading blank rows before the header.
	start := 0
	for start < len(records) && blankRow(records[start]) {
		start++
	}
	if start >= len(records) || len(records) == start+1 {
		return nil, ErrEmptySheet
	}

	hasData := false
	for _, row := range records[start+1:] {
		if !blankRow(row) {
			hasData = true
			break
		}
	}
	if !hasData {
		return nil, ErrEmptySheet
	}

	headers := make([]string, len(records[start]))
	for i, h := range records[start] {
		headers[i] = strings.TrimSpace(h)
	}

	return &Sheet{
		Format:  format,
		Headers: headers,
		Rows:    records[start+1:],
	}, nil
}

// FirstDataRow returns the first non-blank data row, for positional
// column-detection sampling.
func (s *Sheet) FirstDataRow() []string {
	for _, row := range s.Rows {
		if !blankRow(row) {
			return row
		}
	}
	return nil
}

// readCSV parses CSV bytes, tolerating ragged rows. Structural errors
// are reported with their line number.
func readCSV(data []byte) ([][]string, error) {
	data = sanitizeUTF8(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("malformed CSV at line %d: %v", parseErr.Line, parseErr.Err)
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// readXLSX parses the first worksheet of an XLSX workbook.
// Multi-sheet workbooks are not merged; sheets after the first are
// ignored.
func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// sanitizeUTF8 strips a UTF-8 BOM and replaces invalid byte sequences so
// the CSV reader never chokes on exported-from-Excel artifacts.
func sanitizeUTF8(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return data
	}
	return bytes.ToValidUTF8(data, []byte("�"))
}
