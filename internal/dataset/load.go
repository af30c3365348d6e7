package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Load reads a dataset from a CSV or XLSX file, picked by extension.
func Load(path string, opts Options) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path, "", opts)
	default:
		return LoadCSV(path, opts)
	}
}

// LoadCSV reads a dataset from a CSV file with a header row.
func LoadCSV(path string, opts Options) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for a read-only file.
			_ = cerr
		}
	}()
	ds, err := ReadCSV(file, opts)
	if err != nil {
		return nil, err
	}
	ds.summary.Source = path
	return ds, nil
}

// ReadCSV reads a dataset from CSV text with a header row.
func ReadCSV(r io.Reader, opts Options) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv has no header row")
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	header = stripBOM(header)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv rows: %w", err)
	}
	return Normalize(header, rows, opts)
}

// LoadXLSX reads a dataset from a worksheet. An empty sheet name selects the first sheet.
func LoadXLSX(path, sheet string, opts Options) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for a read-only workbook.
			_ = cerr
		}
	}()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheet)
	}
	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		data = append(data, row)
	}
	ds, err := Normalize(rows[0], data, opts)
	if err != nil {
		return nil, err
	}
	ds.summary.Source = path
	return ds, nil
}

func stripBOM(header []string) []string {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header
}
