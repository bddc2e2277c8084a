package recon

import (
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const testMaxSize = 1 << 20

func TestReadSheetCSV(t *testing.T) {
	data := []byte("SKU,Item Name,Qty\nABC-1,Widget,12\nABC-2,Gadget,3\n")

	sheet, err := ReadSheet("count.csv", data, testMaxSize)
	if err != nil {
		t.Fatalf("ReadSheet: %v", err)
	}
	if sheet.Format != "csv" {
		t.Errorf("format = %q, want csv", sheet.Format)
	}
	if len(sheet.Headers) != 3 || sheet.Headers[0] != "SKU" {
		t.Errorf("headers = %v", sheet.Headers)
	}
	if len(sheet.Rows) != 2 {
		t.Errorf("rows = %d, want 2", len(sheet.Rows))
	}
}

func TestReadSheetCSVWithBOM(t *testing.T) {
	data := []byte("\xEF\xBB\xBFSKU,Qty\nA,1\n")

	sheet, err := ReadSheet("count.csv", data, testMaxSize)
	if err != nil {
		t.Fatalf("ReadSheet: %v", err)
	}
	if sheet.Headers[0] != "SKU" {
		t.Errorf("header = %q, want SKU (BOM stripped)", sheet.Headers[0])
	}
}

func TestReadSheetSkipsLeadingBlankRows(t *testing.T) {
	data := []byte(",,\n,,\nSKU,Item,Qty\nA,Widget,1\n")

	sheet, err := ReadSheet("count.csv", data, testMaxSize)
	if err != nil {
		t.Fatalf("ReadSheet: %v", err)
	}
	if sheet.Headers[0] != "SKU" {
		t.Errorf("header = %q, want SKU", sheet.Headers[0])
	}
	if len(sheet.Rows) != 1 {
		t.Errorf("rows = %d, want 1", len(sheet.Rows))
	}
}

func TestReadSheetRejections(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		maxSize  int64
		wantErr  error
	}{
		{
			name:     "oversized file",
			filename: "big.csv",
			data:     []byte(strings.Repeat("x", 100)),
			maxSize:  10,
			wantErr:  ErrFileTooLarge,
		},
		{
			name:     "unsupported extension",
			filename: "count.pdf",
			data:     []byte("whatever"),
			maxSize:  testMaxSize,
			wantErr:  ErrUnsupportedFormat,
		},
		{
			name:     "header only",
			filename: "count.csv",
			data:     []byte("SKU,Qty\n"),
			maxSize:  testMaxSize,
			wantErr:  ErrEmptySheet,
		},
		{
			name:     "entirely blank",
			filename: "count.csv",
			data:     []byte(",,\n,,\n"),
			maxSize:  testMaxSize,
			wantErr:  ErrEmptySheet,
		},
		{
			name:     "header plus blank rows only",
			filename: "count.csv",
			data:     []byte("SKU,Qty\n,\n,\n"),
			maxSize:  testMaxSize,
			wantErr:  ErrEmptySheet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSheet(tt.filename, tt.data, tt.maxSize)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadSheetXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	rows := [][]any{
		{"SKU", "Item Name", "Qty"},
		{"ABC-1", "Widget", 12},
		{"ABC-2", "Gadget", 3},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	sheet, err := ReadSheet("count.xlsx", buf.Bytes(), testMaxSize)
	if err != nil {
		t.Fatalf("ReadSheet: %v", err)
	}
	if sheet.Format != "xlsx" {
		t.Errorf("format = %q, want xlsx", sheet.Format)
	}
	if len(sheet.Headers) != 3 || sheet.Headers[2] != "Qty" {
		t.Errorf("headers = %v", sheet.Headers)
	}
	if len(sheet.Rows) != 2 || sheet.Rows[0][0] != "ABC-1" {
		t.Errorf("rows = %v", sheet.Rows)
	}
}

func TestReadSheetXLSXGarbage(t *testing.T) {
	_, err := ReadSheet("count.xlsx", []byte("not a zip archive"), testMaxSize)
	if err == nil {
		t.Fatal("expected error for non-xlsx bytes")
	}
}

func TestFirstDataRow(t *testing.T) {
	sheet := &Sheet{Rows: [][]string{{"", ""}, {"A", "1"}}}
	row := sheet.FirstDataRow()
	if len(row) == 0 || row[0] != "A" {
		t.Errorf("first data row = %v, want [A 1]", row)
	}
}
